package company

import "errors"

var (
	ErrPolicyNotFound = errors.New("attendance policy not found")
)
