// Package validation runs `validate` struct tags and reports the failures as
// a map of JSON field paths to messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// enum is implemented by the string enums in models.
type enum interface {
	Valid() bool
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so the paths match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enum)
		return ok && e.Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// Errors maps a field path ("amount", "rows[3].date") to its problem.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return strings.Join(parts, "; ")
}

// Add records the first problem reported for field.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns nil when nothing was recorded.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Merge copies other under prefix, e.g. Merge("transactions[0]", itemErrs).
func (e Errors) Merge(prefix string, other Errors) {
	for k, v := range other {
		e.Add(prefix+"."+k, v)
	}
}

// Struct checks s against its validate tags and returns the failures keyed by
// JSON path. The result is empty when s is valid.
func Struct(s any) Errors {
	errs := Errors{}
	errs.collect(validate.Struct(s), "")
	return errs
}

// Var checks a single value against tag and records a failure under field.
func (e Errors) Var(field string, value any, tag string) {
	e.collect(validate.Var(value, tag), field)
}

func (e Errors) collect(err error, field string) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError means a non-struct was passed in, a programming error.
		panic(err)
	}
	for _, fe := range verrs {
		path := field
		if path == "" {
			path = fieldPath(fe.Namespace())
		}
		e.Add(path, message(fe))
	}
}

// fieldPath drops the root struct name: "CreateRequest.title" -> "title".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "enum", "oneof":
		return "is not a supported value"
	case "min", "gte":
		if text {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max", "lte":
		if text {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "is invalid"
}
