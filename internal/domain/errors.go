package domain

import "errors"

var ErrNotFound = errors.New("not found")

// ValidationError is raised before any network call; it never reaches
// the storage or document layers.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps failures of the object storage gateway.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// DocumentError wraps failures of the document store. A not-found during
// an upsert existence check is not a DocumentError; it stays ErrNotFound.
type DocumentError struct {
	Op  string
	Err error
}

func (e *DocumentError) Error() string { return "document " + e.Op + ": " + e.Err.Error() }
func (e *DocumentError) Unwrap() error { return e.Err }

func NewDocumentError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &DocumentError{Op: op, Err: err}
}
