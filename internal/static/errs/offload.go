package errs

import "errors"

// Offload error taxonomy. Services wrap these with fmt.Errorf("%w: ...") so the
// HTTP layer can classify with errors.Is.
var (
	ErrMalformedRequest  = errors.New("malformed request")
	ErrNoCapacity        = errors.New("no fog nodes available")
	ErrForwardFailure    = errors.New("forward failure")
	ErrStatusPushFailure = errors.New("status push failure")
	ErrUnknownNode       = errors.New("unknown node")
)
