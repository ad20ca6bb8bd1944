// Package apperr defines the error taxonomy shared by the observing
// description packages and the program database.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	ErrFrame            = errors.New("offset frame error")
	ErrOffset           = errors.New("offset error")
	ErrTarget           = errors.New("target error")
	ErrDetectorConfig   = errors.New("detector config error")
	ErrInstrumentConfig = errors.New("instrument config error")
	ErrAlignment        = errors.New("alignment error")
	ErrBlock            = errors.New("block error")
	ErrSequence         = errors.New("sequence error")

	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrUnreachable       = errors.New("database unreachable")
	ErrDownloadFailed    = errors.New("download failed")
)
