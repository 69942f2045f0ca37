package services

import (
	"time"

	"delivery-route-service/internal/config"
	"delivery-route-service/internal/domain"
)

// ParcelView is the read-only projection StatusQuery renders: a parcel's
// state as it was known at a specific instant, not necessarily its final
// state. Grounded on the original implementation's get_package_status
// (_examples/original_source/main.py), which re-derives status from
// timestamps rather than trusting a single mutable field.
type ParcelView struct {
	ID      string
	Address string
	City    string
	State   string
	Zip     string

	Deadline      time.Time
	DeadlineIsEOD bool
	Weight        float64

	Status  domain.Status
	TruckID int

	DepartureTime *time.Time
	DeliveryTime  *time.Time
}

// StatusQuery projects a parcel's state as of asOf. Status is re-derived
// from the parcel's recorded departure and delivery instants rather than
// read off its live Status field, so a query for an earlier instant than
// "now" still reports what was true at that earlier instant.
//
// The address shown is similarly time-gated: a parcel flagged
// WrongAddress shows its original (wrong) address for any query before
// the scenario's configured correction instant, and its corrected
// address from that instant on — independent of whether the simulation
// has actually run past the correction yet when StatusQuery is called.
func StatusQuery(p *domain.Parcel, asOf time.Time, cfg config.Config) ParcelView {
	status := domain.AtHub
	if p.DeliveryTime != nil && !asOf.Before(*p.DeliveryTime) {
		status = domain.Delivered
	} else if p.DepartureTime != nil && !asOf.Before(*p.DepartureTime) {
		status = domain.EnRoute
	}

	address, city, state, zip := p.Address, p.City, p.State, p.Zip
	if p.Constraint.WrongAddress && asOf.Before(cfg.CorrectionTime) {
		address, city, state, zip = p.OriginalAddress, p.OriginalCity, p.OriginalState, p.OriginalZip
	}

	truckID := p.TruckID
	if status == domain.AtHub {
		truckID = 0
	}

	return ParcelView{
		ID:      p.ID,
		Address: address,
		City:    city,
		State:   state,
		Zip:     zip,

		Deadline:      p.DeadlineInstant,
		DeadlineIsEOD: p.DeadlineIsEOD,
		Weight:        p.Weight,

		Status:  status,
		TruckID: truckID,

		DepartureTime: statusGatedTime(p.DepartureTime, asOf, status != domain.AtHub),
		DeliveryTime:  statusGatedTime(p.DeliveryTime, asOf, status == domain.Delivered),
	}
}

// statusGatedTime returns t only when include is true, so a query before a
// parcel's recorded departure or delivery never leaks a future timestamp.
func statusGatedTime(t *time.Time, asOf time.Time, include bool) *time.Time {
	if !include || t == nil {
		return nil
	}
	out := *t
	return &out
}
