package domain

import (
	"fmt"
	"time"
)

// MaxCapacity and AverageSpeedMPH are the canonical WGUPS fleet constants
// (spec.md section 6): every truck carries at most 16 parcels and travels
// at a constant average of 18 miles per hour.
const (
	MaxCapacity     = 16
	AverageSpeedMPH = 18.0
)

// Truck is a stateful entity that loads parcels, traverses a route,
// accumulates mileage, and emits events. Its local clock may run ahead of
// the Simulator's global clock while it is out on a trip; the Simulator
// resynchronizes by taking the minimum across all trucks at each tick.
type Truck struct {
	ID         int
	Capacity   int
	AvgSpeed   float64
	HubAddress string

	CurrentLocation string
	Loaded          []*Parcel
	Mileage         float64
	Clock           time.Time
	DepartureTime   time.Time
}

// NewTruck constructs a truck parked at the hub, ready for its first trip.
func NewTruck(id int, hubAddress string, departure time.Time) *Truck {
	return &Truck{
		ID:              id,
		Capacity:        MaxCapacity,
		AvgSpeed:        AverageSpeedMPH,
		HubAddress:      hubAddress,
		CurrentLocation: hubAddress,
		Clock:           departure,
		DepartureTime:   departure,
	}
}

// Idle reports whether the truck is parked at the hub with nothing loaded,
// i.e. available for the Dispatcher to fill on the next tick.
func (t *Truck) Idle() bool {
	return len(t.Loaded) == 0
}

// Load accepts parcels up to the truck's remaining capacity. Accepted
// parcels flip to EnRoute immediately, get their departure time and truck
// id stamped, and each produces one load event stamped at the truck's
// departure time. Parcels beyond capacity are returned unaccepted and
// remain AtHub — the caller (Dispatcher) is expected to have already
// enforced capacity, but Load re-checks defensively.
func (t *Truck) Load(parcels []*Parcel) (accepted []*Parcel, rejected []*Parcel, events []Event) {
	for _, p := range parcels {
		if len(t.Loaded) >= t.Capacity {
			rejected = append(rejected, p)
			continue
		}

		t.Loaded = append(t.Loaded, p)
		p.Status = EnRoute
		departedAt := t.DepartureTime
		p.DepartureTime = &departedAt
		p.TruckID = t.ID

		accepted = append(accepted, p)
		events = append(events, Event{
			Kind:     EventLoad,
			ParcelID: p.ID,
			Time:     t.DepartureTime,
			TruckID:  t.ID,
		})
	}

	return accepted, rejected, events
}

// Deliver runs one trip: deadlined parcels are ordered and delivered
// first, then flexible (EOD) parcels, each phase using a pure greedy
// nearest-neighbor scan with no look-ahead. The truck returns to the hub
// after its last stop. Mileage and the local clock advance exactly — no
// rounding happens mid-trip, only at event-rendering time.
func (t *Truck) Deliver(table *DistanceTable) ([]Event, error) {
	if len(t.Loaded) == 0 {
		return nil, nil
	}

	var deadlined, flexible []*Parcel
	for _, p := range t.Loaded {
		if p.DeadlineIsEOD {
			flexible = append(flexible, p)
		} else {
			deadlined = append(deadlined, p)
		}
	}

	var events []Event

	deliverPhase := func(phase []*Parcel) error {
		remaining := append([]*Parcel(nil), phase...)
		for len(remaining) > 0 {
			bestIdx := -1
			var bestDist float64

			for i, p := range remaining {
				d, err := table.Get(t.CurrentLocation, p.Address)
				if err != nil {
					return fmt.Errorf("deliver: truck %d: %w", t.ID, err)
				}
				if bestIdx == -1 || d < bestDist {
					bestIdx = i
					bestDist = d
				}
			}

			p := remaining[bestIdx]
			remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)

			t.Mileage += bestDist
			t.Clock = t.Clock.Add(time.Duration(bestDist / t.AvgSpeed * float64(time.Hour)))

			deliveredAt := t.Clock
			p.DeliveryTime = &deliveredAt
			p.Status = Delivered

			events = append(events, Event{
				Kind:     EventDelivery,
				ParcelID: p.ID,
				Time:     t.Clock,
				TruckID:  t.ID,
			})

			t.CurrentLocation = p.Address
		}
		return nil
	}

	if err := deliverPhase(deadlined); err != nil {
		return nil, err
	}
	if err := deliverPhase(flexible); err != nil {
		return nil, err
	}

	back, err := table.Get(t.CurrentLocation, t.HubAddress)
	if err != nil {
		return nil, fmt.Errorf("deliver: truck %d: return leg: %w", t.ID, err)
	}
	t.Mileage += back
	t.Clock = t.Clock.Add(time.Duration(back / t.AvgSpeed * float64(time.Hour)))
	t.CurrentLocation = t.HubAddress

	t.Loaded = nil

	return events, nil
}

// ResetForNextTrip parks the truck at the hub for its next load. Mileage
// is cumulative across trips and is intentionally left untouched here —
// spec.md section 4.4 overrides the original single-trip implementation,
// which zeroed mileage on reset.
func (t *Truck) ResetForNextTrip(newDeparture time.Time) {
	t.DepartureTime = newDeparture
	t.Clock = newDeparture
	t.CurrentLocation = t.HubAddress
}
