package contact

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// blankClass is the whitespace set browsers use for \s and trim(), which is
// wider than RE2's ASCII-only \s.
const blankClass = `\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

// emailShape is a minimal shape check, not RFC 5322.
var emailShape = regexp.MustCompile(`^[^` + blankClass + `@]+@[^` + blankClass + `@]+\.[^` + blankClass + `@]+$`)

// isBlank matches blankClass. U+0085 is excluded and U+FEFF included.
func isBlank(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return r == '\uFEFF' || unicode.IsSpace(r)
}

func trimBlank(s string) string { return strings.TrimFunc(s, isBlank) }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("mailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

type rule struct {
	field Field
	tag   string
	err   error
	value func(FormState) string
}

// rules run in order; the first failure wins.
var rules = []rule{
	{FieldName, "required", ErrNameRequired, func(f FormState) string { return trimBlank(f.Name) }},
	{FieldEmail, "mailshape", ErrEmailInvalid, func(f FormState) string { return f.Email }},
	{FieldMessage, "required", ErrMessageRequired, func(f FormState) string { return trimBlank(f.Message) }},
}

// ValidateForm checks f and returns a *ValidationError for the first rule
// that fails. Later rules are not evaluated.
func ValidateForm(f FormState) error {
	for _, r := range rules {
		if err := validate.Var(r.value(f), r.tag); err != nil {
			return &ValidationError{Field: r.field, Err: r.err}
		}
	}
	return nil
}
