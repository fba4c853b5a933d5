package user

import "errors"

var (
	ErrOwnerAccessRequired       = errors.New("owner access required")
	ErrManagerAccessRequired     = errors.New("manager access required")
	ErrPendingRoleAccessRequired = errors.New("pending role access required")
	ErrInsufficientPermissions   = errors.New("insufficient permissions")
	ErrCompanyIDRequired         = errors.New("company ID is required")
	ErrEmployeeIDRequired        = errors.New("employee ID is required")
	ErrInvalidClaims             = errors.New("identity claims are missing or invalid")
)
