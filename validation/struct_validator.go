package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/longscribe/errors"
)

// FieldError is one failing field, keyed by its config path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(keyName)
	return v
})

// keyName reports a field by the key it is configured under, so messages
// read "pipeline.segments" rather than "Pipeline.Segments".
func keyName(fld reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return snakeCase(fld.Name)
}

// Validate checks the `validate` tags of s. Every failing field is listed in
// one INVALID_INPUT error, with the structured list under Details["fields"].
func Validate(s any) error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	fields := make([]FieldError, len(verrs))
	lines := make([]string, len(verrs))
	for i, fe := range verrs {
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		fields[i] = FieldError{Field: path, Message: describe(fe)}
		lines[i] = path + ": " + fields[i].Message
	}
	return errors.Validation(strings.Join(lines, "; ")).WithDetail("fields", fields)
}

func describe(fe validator.FieldError) string {
	var unit string
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Map:
		unit = " items"
	}

	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		field, value, _ := strings.Cut(fe.Param(), " ")
		return "is required when " + strings.ToLower(field) + " is " + value
	case "min", "gte":
		return "must be at least " + fe.Param() + unit
	case "max", "lte":
		return "must be at most " + fe.Param() + unit
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url", "http_url":
		return "must be a valid URL"
	}
	return "is invalid"
}

// snakeCase lowers a Go field name, keeping initialisms together:
// SegmentMinutes -> segment_minutes, BaseURL -> base_url.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
