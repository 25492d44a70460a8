package store

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/bytedance/sonic"

	m "github.com/tordrt/schoolschema/model"
)

// jsonText stores a value as a JSON document in a text column. An empty
// slice or nil is stored as NULL and read back as the zero value.
type jsonText[T any] struct {
	v *T
}

func asJSON[T any](v *T) jsonText[T] {
	return jsonText[T]{v: v}
}

func (j jsonText[T]) Value() (driver.Value, error) {
	if j.v == nil {
		return nil, nil
	}
	b, err := sonic.Marshal(*j.v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" || string(b) == "[]" {
		return nil, nil
	}
	return string(b), nil
}

func (j jsonText[T]) Scan(src any) error {
	var zero T
	*j.v = zero

	switch data := src.(type) {
	case nil:
		return nil
	case string:
		return sonic.UnmarshalString(data, j.v)
	case []byte:
		return sonic.Unmarshal(data, j.v)
	default:
		return fmt.Errorf("cannot scan %T into JSON text", src)
	}
}

// encodeBlob renders a list in the serialized text form it had before the
// list was normalized into its own table
func encodeBlob[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	return sonic.MarshalString(items)
}

// Blobs returns the list fields of one record in their serialized text
// form, keyed by the original column name. Only courses, assignments,
// events and cantines carry lists.
func (s *Store) Blobs(ctx context.Context, table string, id int64) (map[string]string, error) {
	out := make(map[string]string)
	var err error

	switch table {
	case m.TableCourses:
		c, gerr := s.GetCourse(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		out["enrolled_students"], err = encodeBlob(c.EnrolledStudents)
	case m.TableAssignments:
		a, gerr := s.GetAssignment(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		if out["attachments"], err = encodeBlob(a.Attachments); err != nil {
			return nil, err
		}
		out["submissions"], err = encodeBlob(a.Submissions)
	case m.TableEvents:
		e, gerr := s.GetEvent(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		if out["participants"], err = encodeBlob(e.Participants); err != nil {
			return nil, err
		}
		out["levels"], err = encodeBlob(e.Levels)
	case m.TableCantines:
		c, gerr := s.GetCantine(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		out["items"], err = encodeBlob(c.Items)
	default:
		return nil, fmt.Errorf("table %q has no list columns", table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %d: %w", table, id, err)
	}
	return out, nil
}
