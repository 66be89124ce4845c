package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// PasswordSpecials lists the symbols accepted (and one of which is required) in passwords.
const PasswordSpecials = "@$!%*?&"

// Latin letters, the Arabic letter block from alef-with-hamza to yeh, and whitespace.
var personNamePattern = regexp.MustCompile(`^[a-zA-Z\x{0623}-\x{064A}\s]+$`)

// rules are the custom tags available to schema structs.
var rules = map[string]func(string) bool{
	"strongpassword": IsStrongPassword,
	"personname":     IsPersonName,
	"digits":         IsDigits,
}

var engine = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	for tag, check := range rules {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
})

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

func (e ValidationError) String() string {
	if e.Param == "" {
		return e.Field + " failed on " + e.Tag
	}
	return e.Field + " failed on " + e.Tag + "=" + e.Param
}

// ValidationErrors collects multiple validation failures in struct field order.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	for i, failure := range v {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(failure.String())
	}
	return b.String()
}

// Fields lists the failing field names without duplicates.
func (v ValidationErrors) Fields() []string {
	seen := make(map[string]struct{}, len(v))
	fields := make([]string, 0, len(v))
	for _, failure := range v {
		if _, ok := seen[failure.Field]; ok {
			continue
		}
		seen[failure.Field] = struct{}{}
		fields = append(fields, failure.Field)
	}
	return fields
}

// ValidateStruct validates s against its `validate` tags. Fields are named by their json tag.
// At most one failure is reported per field: the first rule in tag order that fails.
func ValidateStruct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	failures := make(ValidationErrors, len(fieldErrs))
	for i, fe := range fieldErrs {
		failures[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	}
	return failures
}

// IsStrongPassword reports whether value contains a lowercase letter, an uppercase letter,
// a digit and one of PasswordSpecials, and nothing outside those classes.
func IsStrongPassword(value string) bool {
	var lower, upper, digit, special bool
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// IsPersonName reports whether value only holds Latin or Arabic letters and whitespace.
func IsPersonName(value string) bool {
	return personNamePattern.MatchString(value)
}

// IsDigits reports whether value is a non-empty run of ASCII digits.
func IsDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
