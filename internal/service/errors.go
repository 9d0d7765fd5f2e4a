package service

import "errors"

var (
	// ErrInvalidInput wraps every validation failure on a write.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden is returned when the caller is not part of the group.
	ErrForbidden = errors.New("not a member of this group")
)
