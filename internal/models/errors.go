package models

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInsufficientInput   = errors.New("insufficient input")
	ErrInvalidRange        = errors.New("invalid page range")
	ErrCorruptInput        = errors.New("corrupt input")
	ErrOperationFailed     = errors.New("operation failed")
	ErrBusy                = errors.New("another operation is in progress")
	ErrInvalidParameter    = errors.New("invalid parameter")
)

// OpError is the only error shape a tool returns to its caller.
type OpError struct {
	Kind    error  // one of the Err... kinds above
	Op      string // merge, split, rotate, ...
	File    string // offending input, if any
	Message string // human readable, shown to the user
	Err     error  // library cause, may be nil
}

func (e *OpError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.File != "" {
		msg = fmt.Sprintf("%s: %s", e.File, msg)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewOpError builds an OpError; cause may be nil.
func NewOpError(kind error, op, file, message string, cause error) *OpError {
	return &OpError{Kind: kind, Op: op, File: file, Message: message, Err: cause}
}

// KindOf returns the taxonomy kind of err, or ErrOperationFailed for anything
// that never went through an OpError.
func KindOf(err error) error {
	var opErr *OpError
	if errors.As(err, &opErr) && opErr.Kind != nil {
		return opErr.Kind
	}
	for _, k := range []error{
		ErrUnsupportedFileType, ErrFileTooLarge, ErrInsufficientInput, ErrInvalidRange,
		ErrCorruptInput, ErrBusy, ErrInvalidParameter,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrOperationFailed
}

// Notification renders err as the single line shown to the user.
func Notification(err error) string {
	if err == nil {
		return ""
	}
	var opErr *OpError
	if errors.As(err, &opErr) && opErr.Message != "" {
		if opErr.File != "" {
			return fmt.Sprintf("%s: %s", opErr.File, opErr.Message)
		}
		return opErr.Message
	}
	switch KindOf(err) {
	case ErrUnsupportedFileType:
		return "This file type is not supported by this tool."
	case ErrFileTooLarge:
		return "File is too large."
	case ErrInsufficientInput:
		return "Please add at least 2 PDF files to merge."
	case ErrInvalidRange:
		return "Invalid page ranges. Use format like: 1-3, 5, 7-9"
	case ErrCorruptInput:
		return "The file could not be read. It may be corrupt or password protected."
	case ErrBusy:
		return "Please wait for the current operation to finish."
	case ErrInvalidParameter:
		return "Invalid option for this tool."
	default:
		return "The operation failed. Please try again."
	}
}
