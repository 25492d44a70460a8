package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/model"
)

// enumeration is implemented by every closed enum type in model
type enumeration interface {
	Valid() bool
}

// childTables maps list fields to the table their elements are stored in
var childTables = map[string]string{
	"Items":       model.TableCantineItems,
	"Submissions": model.TableAssignmentSubmissions,
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by column name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("db"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enumeration)
		return ok && e.Valid()
	})
	return v
}

// check validates a record bound for table and converts the first failure
// into a *dberr.ConstraintViolation
func (s *Store) check(table string, record any) error {
	err := s.validate.Struct(record)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	fe := errs[0]

	for name, child := range childTables {
		if strings.Contains(fe.StructNamespace(), "."+name+"[") {
			table = child
		}
	}

	v := &dberr.ConstraintViolation{
		Table:  table,
		Column: fe.Field(),
		Value:  fe.Value(),
		Err:    err,
	}
	switch fe.Tag() {
	case "enum":
		v.Kind = dberr.KindEnum
	case "required":
		v.Kind = dberr.KindNotNull
		v.Value = nil
	case "max", "len", "gt", "gte":
		v.Kind = dberr.KindRange
		v.Detail = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	default:
		v.Kind = dberr.KindCheck
		v.Detail = "must be a valid " + fe.Tag()
	}
	s.catalog.Resolve(v)
	return v
}
