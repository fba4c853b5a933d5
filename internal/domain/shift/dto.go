package shift

import (
	"fmt"
	"time"
)

type BreakResponse struct {
	StartAt   time.Time  `json:"start_at"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	Minutes   int        `json:"minutes"`
	IsOpen    bool       `json:"is_open"`
	Truncated bool       `json:"truncated,omitempty"`
}

type ShiftResponse struct {
	ClockInID       string          `json:"clock_in_id"`
	ClockInAt       time.Time       `json:"clock_in_at"`
	ClockOutID      *string         `json:"clock_out_id,omitempty"`
	ClockOutAt      *time.Time      `json:"clock_out_at,omitempty"`
	Breaks          []BreakResponse `json:"breaks"`
	WorkMinutes     int             `json:"work_minutes"`
	BreakMinutes    int             `json:"break_minutes"`
	OvertimeMinutes int             `json:"overtime_minutes"`
	IsComplete      bool            `json:"is_complete"`
	HasAnomalies    bool            `json:"has_anomalies"`
	Anomalies       []Anomaly       `json:"anomalies,omitempty"`
}

func NewShiftResponse(s Shift) ShiftResponse {
	resp := ShiftResponse{
		ClockInID:       s.ClockIn.ID,
		ClockInAt:       s.ClockIn.Timestamp,
		Breaks:          make([]BreakResponse, 0, len(s.Breaks)),
		WorkMinutes:     s.WorkMinutes,
		BreakMinutes:    s.BreakMinutes,
		OvertimeMinutes: s.OvertimeMinutes,
		IsComplete:      s.IsComplete,
		HasAnomalies:    s.HasAnomalies,
		Anomalies:       s.Anomalies,
	}
	if s.ClockOut != nil {
		id := s.ClockOut.ID
		at := s.ClockOut.Timestamp
		resp.ClockOutID = &id
		resp.ClockOutAt = &at
	}
	for _, b := range s.Breaks {
		resp.Breaks = append(resp.Breaks, BreakResponse{
			StartAt:   b.StartAt,
			EndAt:     b.EndAt,
			Minutes:   b.Minutes,
			IsOpen:    b.IsOpen(),
			Truncated: b.Truncated,
		})
	}
	return resp
}

// FormatMinutes renders a minute count as "8h 30m".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}
