package jobboard

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidCategory   = errors.New("invalid job category")
	ErrJobNotAvailable   = errors.New("job not available")
	ErrProfileRequired   = errors.New("profile required")
	ErrCompanyRequired   = errors.New("company profile required")
)
