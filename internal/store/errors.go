package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrLocalStoreUnavailable is returned when the on-device database cannot
	// be opened or initialized (missing permissions, corruption, full disk).
	// It is fatal: no automatic recovery is attempted and the user has to
	// clear local storage.
	ErrLocalStoreUnavailable = errors.New("local store unavailable")

	// ErrUnknownCollection is returned when a collection outside the tracked
	// set is addressed.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrInvalidRecord is returned when a record fails validation at the
	// store boundary.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidOperation is returned when a queue operation fails
	// validation at the store boundary.
	ErrInvalidOperation = errors.New("invalid sync operation")

	// ErrOperationNotFound is returned when a queue operation addressed by id
	// is not in the queue.
	ErrOperationNotFound = errors.New("sync operation not found")

	// ErrOperationExists is returned when an operation with the same id is
	// already queued.
	ErrOperationExists = errors.New("sync operation already queued")

	// ErrDocumentExists is returned by the document store when a document
	// with the same collection and id already exists.
	ErrDocumentExists = errors.New("document already exists")

	// ErrDocumentNotFound is returned by the document store when the target
	// document does not exist or belongs to another business.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrRetryable marks a document store failure that may succeed if
	// attempted again (connection loss, serialization failure).
	ErrRetryable = errors.New("transient database failure")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when an engine-level operation fails before any domain
// logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingValue is returned when a value cannot be serialized for
	// storage.
	ErrEncodingValue = errors.New("failed to encode value")

	// ErrDecodingValue is returned when a stored value cannot be
	// deserialized.
	ErrDecodingValue = errors.New("failed to decode value")

	// ErrBoltTransaction is returned when a bbolt transaction fails.
	ErrBoltTransaction = errors.New("bolt transaction failed")
)
