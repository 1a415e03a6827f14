package parser

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by a Parser used after Close.
var ErrClosed = errors.New("parser is closed")

// ParseError is a syntax error at a position in a header.
type ParseError struct {
	File    string
	Line    uint32
	Column  uint32
	Message string

	// Near is the start of the offending source text, if any.
	Near string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Message
	if e.Near != "" {
		msg = fmt.Sprintf("%s near %q", msg, e.Near)
	}
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, msg)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, msg)
}

// FileReadError is returned when a header cannot be read.
type FileReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileReadError) Unwrap() error {
	return e.Err
}
