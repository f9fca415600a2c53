package httphandler

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern requires a local part, an '@', and a dotted domain, with no
// whitespace anywhere. RE2's \s is ASCII only, so Unicode separators, \v
// and the BOM are excluded explicitly.
var emailPattern = regexp.MustCompile(`^[^\s\p{Z}\x{FEFF}\v@]+@[^\s\p{Z}\x{FEFF}\v@]+\.[^\s\p{Z}\x{FEFF}\v@]+$`)

const (
	msgFieldsRequired = "name and email are required"
	msgInvalidEmail   = "invalid email format"
	msgNameTooLong    = "name must be at most 100 characters"
	msgEmailTooLong   = "email must be at most 255 characters"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("emailpattern", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// normalize trims surrounding whitespace from both fields.
func (r *RecordRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

// validateRecordRequest returns a client-facing message describing the first
// problem with req, or "" if req is valid. Missing fields take precedence
// over a malformed email, which takes precedence over length limits.
func validateRecordRequest(req RecordRequest) string {
	err := validate.Struct(req)
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	tags := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		tags[fe.Field()] = fe.Tag()
	}

	switch {
	case tags["Name"] == "required" || tags["Email"] == "required":
		return msgFieldsRequired
	case tags["Email"] == "emailpattern":
		return msgInvalidEmail
	case tags["Name"] == "max":
		return msgNameTooLong
	default:
		return msgEmailTooLong
	}
}
