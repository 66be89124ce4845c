package forms

import (
	"errors"

	"github.com/charlesng35/authflow/pkg/validator"
)

// Form is implemented by every schema in this package.
type Form interface {
	messages() map[string]string
}

// FieldErrors maps a field's JSON name to the message of its first failing rule.
type FieldErrors map[string]string

// Has reports whether field failed.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Validate runs the schema rules and returns nil when form is valid.
// Non-validation errors from the engine are returned as err.
func Validate(form Form) (FieldErrors, error) {
	err := validator.ValidateStruct(form)
	if err == nil {
		return nil, nil
	}

	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return nil, err
	}

	table := form.messages()
	fields := make(FieldErrors, len(failures))
	for _, failure := range failures {
		if fields.Has(failure.Field) {
			continue
		}
		msg, ok := table[failure.Field+"."+failure.Tag]
		if !ok {
			msg = msgFallback
		}
		fields[failure.Field] = msg
	}
	return fields, nil
}
