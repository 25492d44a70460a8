// Package dberr defines the typed schema and constraint errors and maps
// PostgreSQL, MySQL and SQLite driver errors onto them.
package dberr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a constraint violation
type Kind string

const (
	KindForeignKey Kind = "foreign_key"
	KindUnique     Kind = "unique"
	KindEnum       Kind = "enum"
	KindNotNull    Kind = "not_null"
	KindRange      Kind = "range"
	// KindCheck is a CHECK failure not yet resolved to a declared constraint
	KindCheck Kind = "check"
)

// ErrNotFound is returned when a row addressed by id does not exist
var ErrNotFound = errors.New("record not found")

// ConstraintViolation is a write rejected by an integrity rule. It is a
// logic or input error and is never retried.
type ConstraintViolation struct {
	Kind       Kind
	Table      string
	Column     string
	Constraint string
	Value      any
	Allowed    []string
	Detail     string
	Err        error
}

func (e *ConstraintViolation) Error() string {
	field := e.Column
	if e.Table != "" {
		field = e.Table + "." + e.Column
	}
	if field == "" {
		field = "<unknown column>"
	}

	var msg string
	switch e.Kind {
	case KindForeignKey:
		msg = fmt.Sprintf("%s: foreign key violation", field)
		if e.Value != nil {
			msg += fmt.Sprintf(", referenced row %v does not exist", e.Value)
		}
	case KindUnique:
		msg = fmt.Sprintf("%s: unique violation", field)
		if e.Value != nil {
			msg += fmt.Sprintf(", value %v already exists", e.Value)
		}
	case KindEnum:
		msg = fmt.Sprintf("%s: enum violation", field)
		if e.Value != nil {
			msg += fmt.Sprintf(", value %q", fmt.Sprint(e.Value))
		}
		if len(e.Allowed) > 0 {
			msg += fmt.Sprintf(" is not one of [%s]", strings.Join(e.Allowed, ", "))
		}
	case KindNotNull:
		msg = fmt.Sprintf("%s: value is required", field)
	case KindRange:
		msg = fmt.Sprintf("%s: value %v out of range", field, e.Value)
	default:
		msg = fmt.Sprintf("%s: check violation", field)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Constraint != "" {
		msg += fmt.Sprintf(" [constraint %s]", e.Constraint)
	}
	return msg
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// SchemaConflict is an attempt to create a table or index that already
// exists. It aborts the migration run.
type SchemaConflict struct {
	Object string
	Name   string
	Err    error
}

func (e *SchemaConflict) Error() string {
	return fmt.Sprintf("schema conflict: %s %s already exists", e.Object, e.Name)
}

func (e *SchemaConflict) Unwrap() error {
	return e.Err
}

// DependencyOrderError is a migration referencing a table that is not
// created before it
type DependencyOrderError struct {
	Migration  string
	Table      string
	Column     string
	References string
}

func (e *DependencyOrderError) Error() string {
	return fmt.Sprintf("dependency order: migration %s creates %s.%s referencing %s, which is not created by an earlier migration",
		e.Migration, e.Table, e.Column, e.References)
}

// IsViolation reports whether err is a constraint violation of kind k
func IsViolation(err error, k Kind) bool {
	var v *ConstraintViolation
	return errors.As(err, &v) && v.Kind == k
}
