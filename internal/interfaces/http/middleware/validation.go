package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// vehiclePlatePattern accepts uppercase letters, digits, spaces and hyphens,
// between 4 and 16 characters.
var vehiclePlatePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 -]{2,14}[A-Z0-9]$`)

// SetupValidator configures the validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("vehicle_plate", func(fl validator.FieldLevel) bool {
		return vehiclePlatePattern.MatchString(fl.Field().String())
	})
}
