package validator

import (
	"errors"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

var (
	EmailRX = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	SlugRX  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError keeps the first message recorded for a key.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

var (
	structOnce sync.Once
	structs    *playground.Validate
)

func engine() *playground.Validate {
	structOnce.Do(func() {
		structs = playground.New(playground.WithRequiredStructEnabled())
		structs.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return structs
}

// Struct runs the `validate` struct tags of s and records each failure under
// its json path, e.g. "variations[0].images[1].url".
func (v *Validator) Struct(s any) {
	err := engine().Struct(s)
	if err == nil {
		return
	}

	var fieldErrors playground.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		v.AddError("body", err.Error())
		return
	}

	root := reflect.Indirect(reflect.ValueOf(s)).Type().Name()

	for _, fe := range fieldErrors {
		v.AddError(fieldKey(fe.Namespace(), root), message(fe))
	}
}

// fieldKey drops the root struct name from a validator namespace. Anonymous
// structs have no root segment.
func fieldKey(namespace, root string) string {
	if root == "" {
		return namespace
	}
	return strings.TrimPrefix(namespace, root+".")
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be provided"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must not be more than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a valid url"
	default:
		return "is invalid"
	}
}

func In(value string, list ...string) bool {
	return slices.Contains(list, value)
}

func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

func Unique(values []string) bool {
	uniqueValues := make(map[string]bool)

	for _, value := range values {
		uniqueValues[value] = true
	}

	return len(values) == len(uniqueValues)
}
