package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var messages = map[string]string{
	"required": "%s is required",
	"email":    "%s is invalid",
	"min":      "%s must be at least %s characters",
	"max":      "%s must be %s characters or less",
}

// ValidationError lists field problems found before any request was sent.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	structType := reflect.TypeOf(s)
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.StructField()
		if f, ok := structType.FieldByName(fe.StructField()); ok {
			if tag := strings.Split(f.Tag.Get("json"), ",")[0]; tag != "" {
				name = tag
			}
		}
		if _, seen := fields[name]; !seen {
			fields[name] = fieldMessage(name, fe)
		}
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(name string, fe validator.FieldError) string {
	label := strings.ToUpper(name[:1]) + name[1:]
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", label)
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, label, fe.Param())
	}
	return fmt.Sprintf(msg, label)
}
