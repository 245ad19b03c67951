package intake

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// formValidator returns the shared validator. Field errors are reported by
// the `form` tag name so messages line up with the inputs.
func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// check validates s and maps every failing field to its message. A failing
// field with no message falls back to the validator tag.
func check(s interface{}, messages map[string]string) *ValidationError {
	err := formValidator().Struct(s)
	if err == nil {
		return nil
	}

	verr := &ValidationError{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("form", err.Error())
		return verr
	}

	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = "invalid (" + fe.Tag() + ")"
		}
		verr.add(fe.Field(), msg)
	}
	return verr
}
