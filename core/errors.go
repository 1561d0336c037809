package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string
	Error string
}

// PreconditionError reports a missing or invalid input, raised before any store or file access.
type PreconditionError struct {
	Err    error
	Fields []FieldError
}

func NewPreconditionError(err error, flds ...FieldError) error {
	return &PreconditionError{Err: err, Fields: flds}
}

func (err PreconditionError) Error() string {
	msgs := make([]string, 0, len(err.Fields)+1)
	if err.Err != nil {
		msgs = append(msgs, err.Err.Error())
	}
	for _, fe := range err.Fields {
		msgs = append(msgs, fe.Field+": "+fe.Error)
	}
	return strings.Join(msgs, "; ")
}

// EmptyTreeError is returned when a chapter has no published structure.
type EmptyTreeError struct {
	ChapterID string
}

func (err EmptyTreeError) Error() string {
	return fmt.Sprintf("no syllabus nodes found for chapter %q: publish structure first", err.ChapterID)
}

// FormatError reports an artifact that is not valid JSON or lacks the expected shape.
type FormatError struct {
	Path string
	Err  error
}

func NewFormatError(path string, err error) error {
	return &FormatError{Path: path, Err: err}
}

func (err FormatError) Error() string {
	if err.Path == "" {
		return "invalid content artifact: " + err.Err.Error()
	}
	return fmt.Sprintf("invalid content artifact %s: %v", err.Path, err.Err)
}

func (err FormatError) Unwrap() error {
	return err.Err
}

// MismatchError is raised in strict mode when a section list does not mirror the outline 1:1.
type MismatchError struct {
	Sections int
	Nodes    int
}

func (err MismatchError) Error() string {
	return fmt.Sprintf("section count (%d) does not match syllabus node count (%d)", err.Sections, err.Nodes)
}

func IsPrecondition(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}

func IsEmptyTree(err error) bool {
	var target *EmptyTreeError
	return errors.As(err, &target)
}

func IsFormat(err error) bool {
	var target *FormatError
	return errors.As(err, &target)
}

func IsMismatch(err error) bool {
	var target *MismatchError
	return errors.As(err, &target)
}
