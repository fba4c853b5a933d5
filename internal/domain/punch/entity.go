package punch

import (
	"time"
)

type Type string

const (
	TypeClockIn    Type = "CLOCK_IN"
	TypeClockOut   Type = "CLOCK_OUT"
	TypeBreakStart Type = "BREAK_START"
	TypeBreakEnd   Type = "BREAK_END"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeClockIn, TypeClockOut, TypeBreakStart, TypeBreakEnd:
		return true
	}
	return false
}

type Method string

const (
	MethodApp    Method = "APP"
	MethodKiosk  Method = "KIOSK"
	MethodManual Method = "MANUAL"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodApp, MethodKiosk, MethodManual:
		return true
	}
	return false
}

type ReviewStatus string

const (
	ReviewStatusNone     ReviewStatus = "NONE"
	ReviewStatusFlagged  ReviewStatus = "FLAGGED"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
	ReviewStatusEdited   ReviewStatus = "EDITED"
)

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusNone, ReviewStatusFlagged, ReviewStatusApproved, ReviewStatusRejected, ReviewStatusEdited:
		return true
	}
	return false
}

type FlagReason string

const (
	FlagNone            FlagReason = ""
	FlagGeofenceOutside FlagReason = "GEOFENCE_OUTSIDE"
	FlagLocationMissing FlagReason = "LOCATION_MISSING"
	FlagLongShift       FlagReason = "LONG_SHIFT"
	FlagLongBreak       FlagReason = "LONG_BREAK"
	FlagManual          FlagReason = "MANUAL"
)

// Severity orders the review queue: automatic location and duration flags first,
// supervisor flags next, unflagged punches last.
func (r FlagReason) Severity() int {
	switch r {
	case FlagGeofenceOutside, FlagLocationMissing, FlagLongShift, FlagLongBreak:
		return 2
	case FlagManual:
		return 1
	}
	return 0
}

// GeofenceEvaluation is the outcome of checking a punch location against the nearest zone.
type GeofenceEvaluation struct {
	GeofenceID     string
	GeofenceName   string
	DistanceMeters float64
	WithinRadius   bool
}

// Punch is one ledger event. Only the review fields change after creation;
// Timestamp is the effective instant and OriginalTimestamp keeps the value before the first edit.
type Punch struct {
	ID                string
	Seq               int64
	EmployeeID        string
	CompanyID         string
	Type              Type
	Timestamp         time.Time
	OriginalTimestamp *time.Time
	Latitude          *float64
	Longitude         *float64
	AccuracyMeters    *float64
	Method            Method
	DeviceInfo        string
	Geofence          *GeofenceEvaluation
	ReviewStatus      ReviewStatus
	FlagReason        FlagReason
	Notes             *string
	ReviewedBy        *string
	ReviewedAt        *time.Time
	IdempotencyKey    *string
	CreatedAt         time.Time
}

// Before reports whether p sorts before other in ledger order (timestamp, then insert sequence).
func (p Punch) Before(other Punch) bool {
	return KeyBefore(p.Timestamp, p.Seq, other.Timestamp, other.Seq)
}

func KeyBefore(ts time.Time, seq int64, otherTs time.Time, otherSeq int64) bool {
	if ts.Equal(otherTs) {
		return seq < otherSeq
	}
	return ts.Before(otherTs)
}

// Location returns the recorded coordinates as a Location.
func (p Punch) Location() Location {
	if p.Latitude == nil || p.Longitude == nil {
		return UnknownLocation{}
	}
	return KnownLocation{
		Latitude:       *p.Latitude,
		Longitude:      *p.Longitude,
		AccuracyMeters: p.AccuracyMeters,
	}
}

// ReviewUpdate carries the fields a review action writes.
// OriginalTimestamp is only stored when the punch has none yet.
type ReviewUpdate struct {
	Status            ReviewStatus
	FlagReason        *FlagReason
	Timestamp         *time.Time
	OriginalTimestamp *time.Time
	Notes             *string
	ReviewedBy        string
	ReviewedAt        time.Time
}
