package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by stores, services and transports. Callers classify
// with errors.Is; concrete failures are wrapped with "%w: detail".
var (
	ErrConfig        = errors.New("configuration error")
	ErrConnection    = errors.New("store unreachable")
	ErrStoreWrite    = errors.New("store write failed")
	ErrNotFound      = errors.New("voting not found")
	ErrParse         = errors.New("malformed record")
	ErrNameCollision = errors.New("voting already exists")
	ErrInvalidName   = errors.New("invalid voting name")

	ErrInvalidSubmission = errors.New("invalid submission")
	ErrBlankVoter        = fmt.Errorf("%w: voter name is required", ErrInvalidSubmission)
	ErrNoItems           = fmt.Errorf("%w: at least one item is required", ErrInvalidSubmission)
	ErrTooManyItems      = fmt.Errorf("%w: at most %d items are allowed", ErrInvalidSubmission, MaxItems)
)
