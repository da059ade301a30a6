package profiles

import "errors"

var (
	ErrNotFound            = errors.New("Profile not found")
	ErrNoValidFields       = errors.New("No valid update fields provided")
	ErrInvalidStatus       = errors.New("Status must be active or suspended")
	ErrInvalidRole         = errors.New("Invalid role")
	ErrSelfChange          = errors.New("Admins cannot change their own role or status")
	ErrInsufficientCredits = errors.New("Insufficient credits")
)
