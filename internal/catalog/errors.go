package catalog

import "errors"

var (
	ErrPhoneNotFound = errors.New("phone not found")
	ErrInvalidPhone  = errors.New("invalid phone")
)
