package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// EmailPattern accepts the local@domain.tld shape, nothing stricter.
	EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

	// ContactPattern is a phone number written as 7 to 15 ASCII digits.
	ContactPattern = `^[0-9]{7,15}$`

	NameMinLength    = 2
	AddressMinLength = 5
)

// Messages returned to clients for the failing rule.
const (
	MsgAllFieldsRequired = "all fields required"
	MsgInvalidEmail      = "invalid email"
	MsgInvalidContact    = "invalid contact"
	MsgNameTooShort      = "name must be at least 2 characters"
	MsgAddressTooShort   = "address must be at least 5 characters"
	MsgInvalidInput      = "invalid input"
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email   *regexp.Regexp
	Contact *regexp.Regexp
}{
	Email:   regexp.MustCompile(EmailPattern),
	Contact: regexp.MustCompile(ContactPattern),
}

// New returns a validator with the directory's custom tags registered:
// "email_shape" and "contact". Field names in errors come from the form tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("email_shape", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Email.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("contact", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Contact.MatchString(fl.Field().String())
	})

	return v
}

// rulePriority orders failures so the reported message does not depend on
// struct field order: missing fields first, then format checks, then lengths.
var rulePriority = []struct {
	field, tag, message string
}{
	{"", "required", MsgAllFieldsRequired},
	{"email_id", "email_shape", MsgInvalidEmail},
	{"contact", "contact", MsgInvalidContact},
	{"name", "min", MsgNameTooShort},
	{"address", "min", MsgAddressTooShort},
}

// FirstMessage picks the single client-facing message for a validation error.
func FirstMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return MsgInvalidInput
	}

	for _, rule := range rulePriority {
		for _, fe := range fieldErrs {
			if fe.Tag() != rule.tag {
				continue
			}
			if rule.field == "" || fe.Field() == rule.field {
				return rule.message
			}
		}
	}
	return MsgInvalidInput
}
