package shift

import (
	"iter"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
)

// Fold turns punches in ledger order into shifts. Malformed sequences are tolerated:
// a second CLOCK_IN, a second BREAK_START or a BREAK_END without an open break is skipped
// and recorded as an anomaly on the open shift. Punches outside any shift are skipped.
// Rejected punches are ignored. Open shifts and open breaks are measured up to now.
//
// The returned sequence only reads punches, so it can be ranged over any number of times.
func Fold(punches []punch.Punch, now time.Time, overtimeThresholdMinutes int) iter.Seq[Shift] {
	return func(yield func(Shift) bool) {
		var cur *Shift

		for i := range punches {
			p := punches[i]
			if p.ReviewStatus == punch.ReviewStatusRejected {
				continue
			}

			switch p.Type {
			case punch.TypeClockIn:
				if cur != nil {
					cur.addAnomaly(AnomalyDuplicateClockIn)
					continue
				}
				cur = &Shift{EmployeeID: p.EmployeeID, ClockIn: p}

			case punch.TypeBreakStart:
				if cur == nil {
					continue
				}
				if cur.OpenBreak() != nil {
					cur.addAnomaly(AnomalyDuplicateBreakStart)
					continue
				}
				cur.Breaks = append(cur.Breaks, Break{Start: p, StartAt: p.Timestamp})

			case punch.TypeBreakEnd:
				if cur == nil {
					continue
				}
				b := cur.OpenBreak()
				if b == nil {
					cur.addAnomaly(AnomalyOrphanBreakEnd)
					continue
				}
				end := p
				endAt := p.Timestamp
				b.End = &end
				b.EndAt = &endAt

			case punch.TypeClockOut:
				if cur == nil {
					continue
				}
				if b := cur.OpenBreak(); b != nil {
					endAt := p.Timestamp
					b.EndAt = &endAt
					b.Truncated = true
					cur.addAnomaly(AnomalyBreakTruncated)
				}
				out := p
				cur.ClockOut = &out
				cur.IsComplete = true
				finalize(cur, now, overtimeThresholdMinutes)
				if !yield(*cur) {
					return
				}
				cur = nil
			}
		}

		if cur != nil {
			finalize(cur, now, overtimeThresholdMinutes)
			yield(*cur)
		}
	}
}

func finalize(s *Shift, now time.Time, overtimeThresholdMinutes int) {
	end := s.EndAt(now)

	var breakTotal time.Duration
	for i := range s.Breaks {
		b := &s.Breaks[i]
		bEnd := end
		if b.EndAt != nil {
			bEnd = *b.EndAt
		}
		d := nonNegative(bEnd.Sub(b.StartAt))
		b.Minutes = int(d / time.Minute)
		breakTotal += d
	}

	span := int(nonNegative(end.Sub(s.ClockIn.Timestamp)) / time.Minute)
	s.BreakMinutes = int(breakTotal / time.Minute)
	if s.BreakMinutes > span {
		s.BreakMinutes = span
	}
	s.WorkMinutes = span - s.BreakMinutes
	s.OvertimeMinutes = max(0, s.WorkMinutes-overtimeThresholdMinutes)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// Last returns the final shift of seq, or nil when it is empty.
func Last(seq iter.Seq[Shift]) *Shift {
	var last *Shift
	for s := range seq {
		s := s
		last = &s
	}
	return last
}
