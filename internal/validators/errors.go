package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidRecordID      = errors.New("invalid record id")
	ErrInvalidBusinessID    = errors.New("invalid business id")
	ErrBusinessMismatch     = errors.New("record belongs to another business")
	ErrInvalidCollection    = errors.New("invalid collection")
	ErrInvalidOperationKind = errors.New("invalid operation type")
	ErrInvalidOperationID   = errors.New("invalid operation id")
	ErrInvalidCreatedAt     = errors.New("invalid created at timestamp")
	ErrInvalidMaxRetries    = errors.New("max retries must be positive")
	ErrInvalidRetries       = errors.New("retries cannot be negative")
	ErrNoFieldsToUpdate     = errors.New("at least one field must be provided for update")
)
