package timesheet

import "context"

type TimesheetService interface {
	Aggregate(ctx context.Context, req AggregateRequest) (Timesheet, error)
}
