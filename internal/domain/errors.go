package domain

import "fmt"

// ParseError reports a document that is not a usable course page.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("parse course page: %s", e.Reason)
	}
	return fmt.Sprintf("parse course page %s: %s", e.URL, e.Reason)
}

// FetchError reports a transport failure or an unexpected HTTP status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StateIOError reports an unreadable or corrupt persisted state file.
type StateIOError struct {
	Path string
	Err  error
}

func (e *StateIOError) Error() string {
	return fmt.Sprintf("state file %s: %v", e.Path, e.Err)
}

func (e *StateIOError) Unwrap() error {
	return e.Err
}

// SerializationError reports a snapshot that could not be canonicalized.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize snapshot: %v", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
