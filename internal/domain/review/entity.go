package review

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
)

type Action string

const (
	ActionFlag    Action = "flag"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionEdit    Action = "edit"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionFlag, ActionApprove, ActionReject, ActionEdit:
		return true
	}
	return false
}

// Target returns the review status the action moves a punch to.
func (a Action) Target() punch.ReviewStatus {
	switch a {
	case ActionFlag:
		return punch.ReviewStatusFlagged
	case ActionApprove:
		return punch.ReviewStatusApproved
	case ActionReject:
		return punch.ReviewStatusRejected
	default:
		return punch.ReviewStatusEdited
	}
}

// CanTransition reports whether action is allowed from status.
// APPROVED and REJECTED are terminal; EDITED punches can only be edited again.
func CanTransition(from punch.ReviewStatus, action Action) bool {
	switch action {
	case ActionFlag:
		return from == punch.ReviewStatusNone
	case ActionApprove, ActionReject:
		return from == punch.ReviewStatusNone || from == punch.ReviewStatusFlagged
	case ActionEdit:
		return from == punch.ReviewStatusNone || from == punch.ReviewStatusFlagged || from == punch.ReviewStatusEdited
	}
	return false
}

// Review is one audit row of the review workflow.
type Review struct {
	ID                string
	PunchID           string
	CompanyID         string
	ReviewerID        string
	Action            Action
	FromStatus        punch.ReviewStatus
	ToStatus          punch.ReviewStatus
	PreviousTimestamp *time.Time
	NewTimestamp      *time.Time
	Reason            *string
	Notes             *string
	CreatedAt         time.Time
}
