package services

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"delivery-route-service/internal/config"
	"delivery-route-service/internal/domain"
)

// errGroupNotReady signals that a "must be delivered with" group cannot be
// assigned this trip, because a groupmate isn't eligible yet or capacity
// won't fit the whole group. SelectForTruck treats it as "skip this
// candidate," never as a failure.
var errGroupNotReady = errors.New("group not yet eligible")

// SelectForTruck decides which at-hub parcels a truck should load on its
// next trip, given the current simulated instant. It never mutates a
// parcel: the caller is expected to pass the result to Truck.Load, which
// performs the actual status flip and event emission.
//
// The selection pipeline, grounded on the original implementation's
// assign_packages (_examples/original_source/main.py), runs in five
// stages:
//
//  1. Eligibility — only AtHub parcels are candidates.
//  2. Temporal gates — a delayed parcel is invisible before its release
//     instant; a wrong-address parcel is invisible until the address has
//     been corrected.
//  3. Truck binding — a parcel constrained to one truck is invisible to
//     every other truck.
//  4. Ordering — deadlined parcels sort before flexible (EOD) parcels;
//     within each group, ties break by ascending parcel id so that
//     selection is deterministic regardless of input order.
//  5. Group constraint and capacity cutoff — a "must be delivered with"
//     group is assigned atomically: if the whole group doesn't currently
//     fit (not yet eligible, or insufficient remaining capacity), none of
//     it is assigned this trip.
func SelectForTruck(truckID int, capacityRemaining int, parcels []*domain.Parcel, now time.Time, cfg config.Config) ([]*domain.Parcel, error) {
	if capacityRemaining <= 0 {
		return nil, nil
	}

	byID := make(map[string]*domain.Parcel, len(parcels))
	for _, p := range parcels {
		byID[p.ID] = p
	}

	candidates := make([]*domain.Parcel, 0, len(parcels))
	eligible := make(map[string]bool, len(parcels))
	for _, p := range parcels {
		if p.Status != domain.AtHub {
			continue
		}
		if p.Constraint.Delayed && now.Before(cfg.DelayedReleaseTime) {
			continue
		}
		if p.Constraint.WrongAddress && !p.AddressCorrected {
			continue
		}
		if p.Constraint.TruckOnly != 0 && p.Constraint.TruckOnly != truckID {
			continue
		}
		candidates = append(candidates, p)
		eligible[p.ID] = true
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.DeadlineIsEOD != b.DeadlineIsEOD {
			return !a.DeadlineIsEOD
		}
		if !a.DeadlineIsEOD && !a.DeadlineInstant.Equal(b.DeadlineInstant) {
			return a.DeadlineInstant.Before(b.DeadlineInstant)
		}
		return a.ID < b.ID
	})

	selected := make([]*domain.Parcel, 0, capacityRemaining)
	taken := make(map[string]bool, capacityRemaining)
	remaining := capacityRemaining

	for _, p := range candidates {
		if taken[p.ID] || remaining <= 0 {
			continue
		}

		group, err := resolveGroup(p, byID, eligible)
		if errors.Is(err, errGroupNotReady) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("select for truck %d: %w", truckID, err)
		}

		fresh := group[:0:0]
		for _, g := range group {
			if !taken[g.ID] {
				fresh = append(fresh, g)
			}
		}
		if len(fresh) > remaining {
			continue
		}

		for _, g := range fresh {
			selected = append(selected, g)
			taken[g.ID] = true
		}
		remaining -= len(fresh)
	}

	return selected, nil
}

// resolveGroup returns p together with every parcel it must ship with,
// deduplicated and including p itself. Group links are followed in both
// directions and transitively, so a parcel named in another parcel's
// "must be delivered with" note belongs to that parcel's group as well.
// A groupmate that is no longer AtHub (already assigned on an earlier
// trip) is dropped from the group silently; one that is AtHub but not
// currently eligible makes the whole group errGroupNotReady, since an
// atomic group can't be split by waiting on only part of it.
func resolveGroup(p *domain.Parcel, byID map[string]*domain.Parcel, eligible map[string]bool) ([]*domain.Parcel, error) {
	seen := map[string]bool{p.ID: true}
	group := []*domain.Parcel{p}

	for i := 0; i < len(group); i++ {
		cur := group[i]
		var reverse []string
		for id, other := range byID {
			if slices.Contains(other.Constraint.MustBeDeliveredWith, cur.ID) {
				reverse = append(reverse, id)
			}
		}
		sort.Strings(reverse)

		for _, id := range append(append([]string(nil), cur.Constraint.MustBeDeliveredWith...), reverse...) {
			if seen[id] {
				continue
			}
			mate, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("parcel %s must ship with unknown parcel %s", cur.ID, id)
			}
			if mate.Status != domain.AtHub {
				continue
			}
			if !eligible[id] {
				return nil, errGroupNotReady
			}
			seen[id] = true
			group = append(group, mate)
		}
	}

	return group, nil
}
