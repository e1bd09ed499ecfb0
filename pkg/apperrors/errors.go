package apperrors

import "errors"

var (
	ErrAuthorizationRequired = errors.New("authorization required to search custom areas")
	ErrInvalidSelection      = errors.New("selected location is not in the candidate set")
	ErrUnsupportedSubregion  = errors.New("unsupported subregion type")
	ErrInvalidIdentifier     = errors.New("invalid source identifier")
	ErrSourceUnavailable     = errors.New("geometry source unavailable")
)
