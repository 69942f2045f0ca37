package services

import (
	"testing"
	"time"

	"delivery-route-service/internal/config"
	"delivery-route-service/internal/domain"
)

func testConfig() config.Config {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	return config.Config{
		BaseDate:           base,
		SimStartTime:       base.Add(8 * time.Hour),
		DelayedReleaseTime: base.Add(9*time.Hour + 5*time.Minute),
		CorrectionTime:     base.Add(10*time.Hour + 20*time.Minute),
		CorrectionParcelID: "9",
	}
}

func TestSelectForTruckOrdersDeadlinedBeforeFlexible(t *testing.T) {
	cfg := testConfig()
	now := cfg.SimStartTime

	flexible := &domain.Parcel{ID: "2", Status: domain.AtHub, DeadlineIsEOD: true}
	deadlined := &domain.Parcel{ID: "1", Status: domain.AtHub, DeadlineInstant: now.Add(time.Hour)}

	selected, err := SelectForTruck(1, 10, []*domain.Parcel{flexible, deadlined}, now, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 2 || selected[0].ID != "1" || selected[1].ID != "2" {
		t.Fatalf("selected = %v, want [1 2] (deadlined first)", ids(selected))
	}
}

func TestSelectForTruckGatesDelayedParcelUntilRelease(t *testing.T) {
	cfg := testConfig()
	p := &domain.Parcel{ID: "6", Status: domain.AtHub, DeadlineIsEOD: true, Constraint: domain.Constraint{Delayed: true}}

	before := cfg.DelayedReleaseTime.Add(-time.Minute)
	selected, err := SelectForTruck(1, 10, []*domain.Parcel{p}, before, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 0 {
		t.Fatalf("selected before release = %v, want empty", ids(selected))
	}

	after := cfg.DelayedReleaseTime
	selected, err = SelectForTruck(1, 10, []*domain.Parcel{p}, after, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("selected at release = %v, want [6]", ids(selected))
	}
}

func TestSelectForTruckGatesWrongAddressUntilCorrected(t *testing.T) {
	cfg := testConfig()
	p := &domain.Parcel{ID: "9", Status: domain.AtHub, DeadlineIsEOD: true, Constraint: domain.Constraint{WrongAddress: true}}

	selected, err := SelectForTruck(1, 10, []*domain.Parcel{p}, cfg.CorrectionTime, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 0 {
		t.Fatalf("selected before correction applied = %v, want empty", ids(selected))
	}

	p.AddressCorrected = true
	selected, err = SelectForTruck(1, 10, []*domain.Parcel{p}, cfg.CorrectionTime, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("selected after correction = %v, want [9]", ids(selected))
	}
}

func TestSelectForTruckRespectsTruckBinding(t *testing.T) {
	cfg := testConfig()
	p := &domain.Parcel{ID: "3", Status: domain.AtHub, DeadlineIsEOD: true, Constraint: domain.Constraint{TruckOnly: 2}}

	selected, err := SelectForTruck(1, 10, []*domain.Parcel{p}, cfg.SimStartTime, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 0 {
		t.Fatalf("selected on truck 1 = %v, want empty (bound to truck 2)", ids(selected))
	}

	selected, err = SelectForTruck(2, 10, []*domain.Parcel{p}, cfg.SimStartTime, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("selected on truck 2 = %v, want [3]", ids(selected))
	}
}

func TestSelectForTruckAssignsGroupAtomically(t *testing.T) {
	cfg := testConfig()
	now := cfg.SimStartTime

	p14 := &domain.Parcel{ID: "14", Status: domain.AtHub, DeadlineIsEOD: true, Constraint: domain.Constraint{MustBeDeliveredWith: []string{"15", "19"}}}
	p15 := &domain.Parcel{ID: "15", Status: domain.AtHub, DeadlineIsEOD: true}
	p19 := &domain.Parcel{ID: "19", Status: domain.AtHub, DeadlineIsEOD: true}

	all := []*domain.Parcel{p14, p15, p19}

	// Capacity too small for the whole group: none of it ships.
	selected, err := SelectForTruck(1, 2, all, now, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 0 {
		t.Fatalf("selected with insufficient capacity = %v, want empty", ids(selected))
	}

	// Capacity fits the group: all three ship together.
	selected, err = SelectForTruck(1, 3, all, now, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 3 {
		t.Fatalf("selected with sufficient capacity = %v, want all 3", ids(selected))
	}
}

func TestSelectForTruckCapacityCutoff(t *testing.T) {
	cfg := testConfig()
	now := cfg.SimStartTime

	var parcels []*domain.Parcel
	for i := 1; i <= 5; i++ {
		parcels = append(parcels, &domain.Parcel{ID: string(rune('0' + i)), Status: domain.AtHub, DeadlineIsEOD: true})
	}

	selected, err := SelectForTruck(1, 3, parcels, now, cfg)
	if err != nil {
		t.Fatalf("select for truck: %v", err)
	}
	if len(selected) != 3 {
		t.Fatalf("selected = %d, want 3 (capacity cutoff)", len(selected))
	}
}

func ids(parcels []*domain.Parcel) []string {
	out := make([]string, len(parcels))
	for i, p := range parcels {
		out[i] = p.ID
	}
	return out
}
