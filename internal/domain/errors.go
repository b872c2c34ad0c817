package domain

import "errors"

var (
	// ErrUnsupportedFormat signals a document type outside the accepted set.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrCorruptDocument signals a document whose byte stream could not be parsed.
	ErrCorruptDocument = errors.New("corrupt document")
	// ErrEmptyDocument signals a document with no usable text after normalization.
	ErrEmptyDocument = errors.New("empty document")
	// ErrUnknownOperation signals an operation outside the closed set.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrInferenceProviderError signals an inference capability failure or timeout.
	ErrInferenceProviderError = errors.New("inference provider error")
	// ErrCacheUnavailable signals an unreachable cache backend.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrBlobNotFound signals a missing stored upload.
	ErrBlobNotFound = errors.New("blob not found")
)
