package review

import "errors"

var (
	ErrInvalidTransition   = errors.New("review action is not allowed for the punch's current status")
	ErrInvalidEditOrdering = errors.New("edited timestamp would move the punch past its neighbouring punches")
)
