package domain

import (
	"testing"
	"time"
)

func newTestTable(t *testing.T) *DistanceTable {
	t.Helper()
	addresses := []string{"HUB", "A", "B", "C"}
	matrix := [][]float64{
		{0, 0, 0, 0},
		{2, 0, 0, 0},
		{5, 3, 0, 0},
		{1, 4, 2, 0},
	}
	table, err := NewDistanceTable(addresses, matrix)
	if err != nil {
		t.Fatalf("new distance table: %v", err)
	}
	return table
}

func TestTruckLoadRespectsCapacity(t *testing.T) {
	truck := NewTruck(1, "HUB", time.Date(2023, 1, 1, 8, 0, 0, 0, time.UTC))
	truck.Capacity = 1

	p1 := &Parcel{ID: "1", Address: "A"}
	p2 := &Parcel{ID: "2", Address: "B"}

	accepted, rejected, events := truck.Load([]*Parcel{p1, p2})

	if len(accepted) != 1 || accepted[0].ID != "1" {
		t.Fatalf("accepted = %v, want only parcel 1", accepted)
	}
	if len(rejected) != 1 || rejected[0].ID != "2" {
		t.Fatalf("rejected = %v, want only parcel 2", rejected)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if p1.Status != EnRoute {
		t.Fatalf("p1.Status = %v, want EnRoute", p1.Status)
	}
	if p2.Status != AtHub {
		t.Fatalf("p2.Status = %v, want AtHub (unchanged)", p2.Status)
	}
}

func TestTruckDeliverPrioritizesDeadlinedThenGreedyNearestNeighbor(t *testing.T) {
	table := newTestTable(t)
	depart := time.Date(2023, 1, 1, 8, 0, 0, 0, time.UTC)
	truck := NewTruck(1, "HUB", depart)

	deadlinedAt := time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)
	p1 := &Parcel{ID: "1", Address: "A", DeadlineInstant: deadlinedAt}
	p2 := &Parcel{ID: "2", Address: "B", DeadlineIsEOD: true}
	p3 := &Parcel{ID: "3", Address: "C", DeadlineIsEOD: true}

	truck.Load([]*Parcel{p1, p2, p3})

	events, err := truck.Deliver(table)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}

	wantOrder := []string{"1", "2", "3"}
	var gotOrder []string
	for _, e := range events {
		if e.Kind == EventDelivery {
			gotOrder = append(gotOrder, e.ParcelID)
		}
	}
	if len(gotOrder) != len(wantOrder) {
		t.Fatalf("delivered %d parcels, want %d", len(gotOrder), len(wantOrder))
	}
	for i, id := range wantOrder {
		if gotOrder[i] != id {
			t.Fatalf("delivery order = %v, want %v", gotOrder, wantOrder)
		}
	}

	wantMileage := 2.0 + 3.0 + 2.0 + 1.0
	if truck.Mileage != wantMileage {
		t.Fatalf("mileage = %v, want %v", truck.Mileage, wantMileage)
	}

	if truck.CurrentLocation != "HUB" {
		t.Fatalf("current location after trip = %q, want HUB", truck.CurrentLocation)
	}
	if len(truck.Loaded) != 0 {
		t.Fatalf("loaded after trip = %d, want 0 (trip complete)", len(truck.Loaded))
	}

	for _, p := range []*Parcel{p1, p2, p3} {
		if p.Status != Delivered {
			t.Fatalf("parcel %s status = %v, want Delivered", p.ID, p.Status)
		}
		if p.DeliveryTime == nil {
			t.Fatalf("parcel %s delivery time not set", p.ID)
		}
	}
}

func TestTruckResetForNextTripPreservesMileage(t *testing.T) {
	truck := NewTruck(1, "HUB", time.Date(2023, 1, 1, 8, 0, 0, 0, time.UTC))
	truck.Mileage = 12.5
	truck.CurrentLocation = "somewhere else"

	next := time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)
	truck.ResetForNextTrip(next)

	if truck.Mileage != 12.5 {
		t.Fatalf("mileage after reset = %v, want unchanged 12.5", truck.Mileage)
	}
	if truck.CurrentLocation != "HUB" {
		t.Fatalf("current location after reset = %q, want HUB", truck.CurrentLocation)
	}
	if !truck.Clock.Equal(next) {
		t.Fatalf("clock after reset = %v, want %v", truck.Clock, next)
	}
}
