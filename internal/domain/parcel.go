package domain

import "time"

// Status is a parcel's position in its delivery lifecycle.
type Status int

const (
	AtHub Status = iota
	EnRoute
	Delivered
)

func (s Status) String() string {
	switch s {
	case AtHub:
		return "At Hub"
	case EnRoute:
		return "En Route"
	case Delivered:
		return "Delivered"
	default:
		return "Unknown"
	}
}

// Constraint is a directive parsed out of a parcel's free-text notes.
// Encoding the notes as a small enum at ingest keeps Dispatcher checks
// declarative instead of re-parsing strings on every tick.
type Constraint struct {
	Delayed             bool
	WrongAddress        bool
	TruckOnly           int      // 0 if unconstrained
	MustBeDeliveredWith []string // related parcel ids, excluding self
}

// Parcel is a single delivery unit handled by the simulator.
//
// Address and its city/state/zip snapshot are mutable (the address
// correction event rewrites them in place); OriginalAddress and its
// snapshot are preserved so StatusQuery can project the historical
// view for times before the correction took effect.
type Parcel struct {
	ID      string
	Address string
	City    string
	State   string
	Zip     string

	OriginalAddress string
	OriginalCity    string
	OriginalState   string
	OriginalZip     string

	Deadline        time.Time
	DeadlineIsEOD   bool
	DeadlineInstant time.Time

	Weight float64
	Notes  string

	Constraint Constraint

	Status Status

	DepartureTime *time.Time
	DeliveryTime  *time.Time
	TruckID       int

	// AddressCorrected tracks whether the simulator has already applied
	// the address-correction event for this parcel; the Dispatcher's
	// wrong-address gate keeps the parcel out of selection until it is set.
	AddressCorrected bool
}

// CorrectAddress mutates the parcel's current address fields in place,
// leaving the Original* snapshot untouched so history stays queryable.
func (p *Parcel) CorrectAddress(address, city, state, zip string) {
	p.Address = address
	p.City = city
	p.State = state
	p.Zip = zip
}
