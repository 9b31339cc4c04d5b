package errors

import "errors"

// Sentinel errors shared by repositories, services and the HTTP layer.
// Wrap them with fmt.Errorf("%w: ...") to add context and match with errors.Is.
var (
	NotFound        = errors.New("not found")
	InvalidArgument = errors.New("invalid argument")
	Unauthorized    = errors.New("unauthorized")
	Forbidden       = errors.New("forbidden")
)
