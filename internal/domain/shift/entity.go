package shift

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
)

type Anomaly string

const (
	AnomalyDuplicateClockIn    Anomaly = "duplicate_clock_in"
	AnomalyDuplicateBreakStart Anomaly = "duplicate_break_start"
	AnomalyOrphanBreakEnd      Anomaly = "orphan_break_end"
	AnomalyBreakTruncated      Anomaly = "break_truncated_at_clock_out"
)

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

type Break struct {
	Start   punch.Punch
	End     *punch.Punch
	StartAt time.Time
	// EndAt is nil while the break is open.
	EndAt *time.Time
	// Truncated breaks had no BREAK_END and were closed by the CLOCK_OUT.
	Truncated bool
	Minutes   int
}

func (b Break) IsOpen() bool {
	return b.EndAt == nil
}

// Shift is derived from the ledger and never stored.
type Shift struct {
	EmployeeID      string
	ClockIn         punch.Punch
	ClockOut        *punch.Punch
	Breaks          []Break
	WorkMinutes     int
	BreakMinutes    int
	OvertimeMinutes int
	IsComplete      bool
	HasAnomalies    bool
	Anomalies       []Anomaly
}

// EndAt returns the clock-out instant, or now for an open shift.
func (s Shift) EndAt(now time.Time) time.Time {
	if s.ClockOut != nil {
		return s.ClockOut.Timestamp
	}
	return now
}

// OpenBreak returns the break in progress, if any.
func (s Shift) OpenBreak() *Break {
	if len(s.Breaks) == 0 {
		return nil
	}
	last := &s.Breaks[len(s.Breaks)-1]
	if last.IsOpen() {
		return last
	}
	return nil
}

// Overlaps reports whether the shift intersects w. Zero-length shifts count when
// their clock-in falls inside w.
func (s Shift) Overlaps(w Window, now time.Time) bool {
	start := s.ClockIn.Timestamp
	if !start.Before(w.End) {
		return false
	}
	return s.EndAt(now).After(w.Start) || !start.Before(w.Start)
}

func (s *Shift) addAnomaly(a Anomaly) {
	s.HasAnomalies = true
	s.Anomalies = append(s.Anomalies, a)
}
