// Package validation checks request bodies and config structs against their
// `validate` struct tags.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid input")

var validate *val.Validate

var messages = map[string]string{
	"required": "{field} is required",
	"min":      "{field} must be at least {param}",
	"max":      "{field} must be at most {param}",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"timezone": "{field} must be an IANA time zone",
	"datetime": "{field} must match {param}",
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// Decode reads JSON from r into data and validates the result.
func Decode[T any](r io.Reader, data *T) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("%w: decode body: %w", ErrInvalid, err)
	}
	return Struct(data)
}

// Struct validates data against its struct tags.
func Struct(data any) error {
	if err := validate.Struct(data); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, message(err))
	}
	return nil
}

// Var validates a single value, such as a query parameter, against tag.
// name is used in place of the struct field name in the message.
func Var(name string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.ReplaceAll(message(err), "{field}", name))
	}
	return nil
}

func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		msg := messages[valErr.Tag()]
		if msg == "" {
			continue
		}
		field := valErr.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		if field != "" {
			msg = strings.ReplaceAll(msg, "{field}", field)
		}
		return strings.ReplaceAll(msg, "{param}", valErr.Param())
	}
	return valErrors.Error()
}
