package services

import (
	"context"
	"fmt"
	"time"

	"delivery-route-service/internal/config"
	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
	"delivery-route-service/internal/store"
)

// Simulator owns the fleet, the parcel store, and the clock that drives
// one full day of deliveries. It is the Go-native shape of the original
// implementation's main() loop (_examples/original_source/main.py):
// single-threaded, deterministic, and advanced one dispatch decision at a
// time rather than in real wall-clock minutes.
//
// Simulator consults the ParcelStore (spec.md section 2's dataflow) to
// fill idle trucks each tick rather than holding its own parcel slice, so
// the store stays the single source of truth shared with any other
// consumer (e.g. the CLI's status lookups).
type Simulator struct {
	Trucks   []*domain.Truck
	Store    *store.ParcelStore
	Distance *domain.DistanceTable
	Cfg      config.Config

	events            domain.EventLog
	correctionApplied bool
	tick              int
}

// NewSimulator builds the fleet (one domain.Truck per cfg.TruckCount,
// every truck parked at the hub at cfg.SimStartTime) and wires it to the
// given parcel store and distance table.
func NewSimulator(cfg config.Config, parcels *store.ParcelStore, distance *domain.DistanceTable) *Simulator {
	trucks := make([]*domain.Truck, 0, cfg.TruckCount)
	for i := 1; i <= cfg.TruckCount; i++ {
		trucks = append(trucks, domain.NewTruck(i, cfg.HubAddress, cfg.SimStartTime))
	}

	return &Simulator{
		Trucks:   trucks,
		Store:    parcels,
		Distance: distance,
		Cfg:      cfg,
	}
}

// Run drives the simulated day to completion: every parcel ends up
// Delivered, or Run returns an error describing why no further progress
// could be made. The returned EventLog holds every load, delivery, and
// address-update event emitted along the way.
func (s *Simulator) Run(ctx context.Context) (domain.EventLog, error) {
	clock := s.Cfg.SimStartTime

	for {
		if s.allDelivered() {
			return s.events, nil
		}

		s.applyCorrectionIfDue(clock)

		dispatchedAny := false
		for _, truck := range s.Trucks {
			if truck.Clock.After(clock) {
				continue
			}

			dispatched, err := s.dispatchTruck(ctx, truck, clock)
			if err != nil {
				return s.events, err
			}
			if dispatched {
				dispatchedAny = true
			}
		}

		if s.allDelivered() {
			return s.events, nil
		}

		if dispatchedAny {
			next, ok := s.earliestTruckClockAfter(clock)
			if !ok {
				return s.events, fmt.Errorf("run simulation: trucks ran but no truck clock advanced past %s", clock.Format("3:04 PM"))
			}
			clock = next
			continue
		}

		next, ok := s.nextThreshold(clock)
		if !ok {
			return s.events, fmt.Errorf("run simulation: stuck at %s with undelivered parcels and no pending release", clock.Format("3:04 PM"))
		}
		clock = next
	}
}

func (s *Simulator) dispatchTruck(ctx context.Context, truck *domain.Truck, clock time.Time) (bool, error) {
	ctx = obs.WithTick(ctx, s.tick)
	s.tick++
	var err error
	defer obs.Time(ctx, fmt.Sprintf("dispatch_truck_%d", truck.ID))(&err)

	capacityRemaining := truck.Capacity - len(truck.Loaded)
	selected, err := SelectForTruck(truck.ID, capacityRemaining, s.Store.All(), clock, s.Cfg)
	if err != nil {
		return false, fmt.Errorf("run simulation: %w", err)
	}
	if len(selected) == 0 {
		return false, nil
	}

	truck.ResetForNextTrip(clock)

	_, rejected, loadEvents := truck.Load(selected)
	if len(rejected) != 0 {
		err = fmt.Errorf("run simulation: truck %d: dispatcher over-selected %d parcels beyond capacity", truck.ID, len(rejected))
		return false, err
	}
	s.events.Append(loadEvents...)

	deliverEvents, derr := truck.Deliver(s.Distance)
	if derr != nil {
		err = fmt.Errorf("run simulation: truck %d: %w", truck.ID, derr)
		return false, err
	}
	s.events.Append(deliverEvents...)

	return true, nil
}

// applyCorrectionIfDue applies the one configured wrong-address fix the
// instant the clock reaches it, exactly once.
func (s *Simulator) applyCorrectionIfDue(clock time.Time) {
	if s.correctionApplied || clock.Before(s.Cfg.CorrectionTime) {
		return
	}

	p := s.Store.Lookup(s.Cfg.CorrectionParcelID)
	if p != nil {
		p.CorrectAddress(s.Cfg.CorrectionAddress, s.Cfg.CorrectionCity, s.Cfg.CorrectionState, s.Cfg.CorrectionZip)
		p.AddressCorrected = true
		s.events.Append(domain.Event{
			Kind:     domain.EventUpdate,
			ParcelID: p.ID,
			Time:     s.Cfg.CorrectionTime,
			Message: fmt.Sprintf("Corrected address for package %s to %s, %s, %s %s.",
				p.ID, p.Address, p.City, p.State, p.Zip),
		})
	}

	s.correctionApplied = true
}

func (s *Simulator) allDelivered() bool {
	for _, p := range s.Store.All() {
		if p.Status != domain.Delivered {
			return false
		}
	}
	return true
}

func (s *Simulator) earliestTruckClockAfter(clock time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, truck := range s.Trucks {
		if !truck.Clock.After(clock) {
			continue
		}
		if !found || truck.Clock.Before(best) {
			best = truck.Clock
			found = true
		}
	}
	return best, found
}

// nextThreshold finds the earliest not-yet-applied release instant that
// could unblock an AtHub parcel: the address correction, or the delayed
// parcels' release time.
func (s *Simulator) nextThreshold(clock time.Time) (time.Time, bool) {
	var candidates []time.Time

	if !s.correctionApplied && s.Cfg.CorrectionTime.After(clock) {
		if p := s.Store.Lookup(s.Cfg.CorrectionParcelID); p != nil && p.Status == domain.AtHub {
			candidates = append(candidates, s.Cfg.CorrectionTime)
		}
	}

	if s.Cfg.DelayedReleaseTime.After(clock) {
		for _, p := range s.Store.All() {
			if p.Status == domain.AtHub && p.Constraint.Delayed {
				candidates = append(candidates, s.Cfg.DelayedReleaseTime)
				break
			}
		}
	}

	if len(candidates) == 0 {
		return time.Time{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Before(best) {
			best = c
		}
	}
	return best, true
}

// EventLog returns the simulator's recorded events.
func (s *Simulator) EventLog() domain.EventLog {
	return s.events
}
