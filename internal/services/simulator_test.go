package services

import (
	"context"
	"testing"
	"time"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/store"
)

func newTestStore(t *testing.T, parcels []*domain.Parcel) *store.ParcelStore {
	t.Helper()
	s := store.New(len(parcels))
	for _, p := range parcels {
		s.Insert(p.ID, p)
	}
	return s
}

func newSimTestTable(t *testing.T) *domain.DistanceTable {
	t.Helper()
	addresses := []string{"HUB", "A", "B", "C", "D"}
	matrix := [][]float64{
		{0, 0, 0, 0, 0},
		{1, 0, 0, 0, 0},
		{2, 1, 0, 0, 0},
		{3, 2, 1, 0, 0},
		{4, 3, 2, 1, 0},
	}
	table, err := domain.NewDistanceTable(addresses, matrix)
	if err != nil {
		t.Fatalf("new distance table: %v", err)
	}
	return table
}

func TestSimulatorRunDeliversEveryParcel(t *testing.T) {
	table := newSimTestTable(t)
	cfg := testConfig()
	cfg.HubAddress = "HUB"
	cfg.TruckCount = 2

	deadline := cfg.SimStartTime.Add(time.Hour)
	parcels := []*domain.Parcel{
		{ID: "1", Address: "A", Status: domain.AtHub, DeadlineInstant: deadline},
		{ID: "2", Address: "B", Status: domain.AtHub, DeadlineIsEOD: true},
		{ID: "3", Address: "C", Status: domain.AtHub, DeadlineIsEOD: true, Constraint: domain.Constraint{TruckOnly: 2}},
		{ID: "4", Address: "D", Status: domain.AtHub, DeadlineIsEOD: true, Constraint: domain.Constraint{Delayed: true}},
	}

	sim := NewSimulator(cfg, newTestStore(t, parcels), table)

	eventLog, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, p := range parcels {
		if p.Status != domain.Delivered {
			t.Fatalf("parcel %s status = %v, want Delivered", p.ID, p.Status)
		}
	}

	p4 := parcels[3]
	if p4.DepartureTime == nil || p4.DepartureTime.Before(cfg.DelayedReleaseTime) {
		t.Fatalf("delayed parcel 4 departed at %v, want not before %v", p4.DepartureTime, cfg.DelayedReleaseTime)
	}

	totalMileage := 0.0
	for _, truck := range sim.Trucks {
		totalMileage += truck.Mileage
	}
	if totalMileage != 18 {
		t.Fatalf("total mileage = %v, want 18", totalMileage)
	}

	deliveryCount := 0
	for _, e := range eventLog.Sorted() {
		if e.Kind == domain.EventDelivery {
			deliveryCount++
		}
	}
	if deliveryCount != len(parcels) {
		t.Fatalf("delivery events = %d, want %d", deliveryCount, len(parcels))
	}
}

func TestSimulatorAppliesAddressCorrection(t *testing.T) {
	table := newSimTestTable(t)
	cfg := testConfig()
	cfg.HubAddress = "HUB"
	cfg.TruckCount = 1
	cfg.CorrectionParcelID = "9"
	cfg.CorrectionAddress = "A"

	p9 := &domain.Parcel{
		ID:              "9",
		Address:         "C",
		OriginalAddress: "C",
		Status:          domain.AtHub,
		DeadlineIsEOD:   true,
		Constraint:      domain.Constraint{WrongAddress: true},
	}

	sim := NewSimulator(cfg, newTestStore(t, []*domain.Parcel{p9}), table)

	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if p9.Status != domain.Delivered {
		t.Fatalf("parcel 9 status = %v, want Delivered", p9.Status)
	}
	if !p9.AddressCorrected {
		t.Fatal("parcel 9 AddressCorrected = false, want true")
	}
	if p9.Address != "A" {
		t.Fatalf("parcel 9 address = %q, want corrected address A", p9.Address)
	}
	if p9.OriginalAddress != "C" {
		t.Fatalf("parcel 9 original address = %q, want preserved C", p9.OriginalAddress)
	}
}
