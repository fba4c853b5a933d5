package punch

import "context"

type PunchService interface {
	Record(ctx context.Context, req RecordRequest) (RecordResponse, error)
}
