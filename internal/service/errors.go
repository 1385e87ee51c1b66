package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrLocalStore wraps a Local Store failure hit during a service call.
	// It is fatal for the running synchronization.
	ErrLocalStore = errors.New("local store failure")

	ErrUnknownOperationKind  = errors.New("unknown operation kind")
	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrNoBusinessInContext = errors.New("no business id in context")
	ErrBusinessMismatch    = errors.New("record belongs to another business")
)
