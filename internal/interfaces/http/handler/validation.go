package handler

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// RegisterValidations installs custom binding validations. "dateonly"
// accepts calendar dates without a time component.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
}

// parseDate parses a calendar date in 2006-01-02 form
func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// parseOptionalDate parses a calendar date, returning nil for empty input
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
