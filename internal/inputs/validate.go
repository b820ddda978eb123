package inputs

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their input name so messages match the workflow file.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("input"); name != "" {
			return name
		}
		return fld.Name
	})

	_ = validate.RegisterValidation("android_device", func(fl validator.FieldLevel) bool {
		return slices.Contains(AndroidDevices, fl.Field().String())
	})
	_ = validate.RegisterValidation("ios_device", func(fl validator.FieldLevel) bool {
		return slices.Contains(IOSDevices, fl.Field().String())
	})

	return validate
}

// translate converts validator errors into messages naming the offending input.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, errors.New(describe(fe)))
	}
	return errors.Join(msgs...)
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return "input required and not supplied: " + name
	case "url":
		return fmt.Sprintf("invalid %s: %q is not a URL", name, fe.Value())
	case "oneof":
		return fmt.Sprintf("invalid %s: %v (expected one of %s)", name, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "android_device":
		return fmt.Sprintf("invalid android device: %v", fe.Value())
	case "ios_device":
		return fmt.Sprintf("invalid ios device: %v", fe.Value())
	case "gte", "gt", "lte":
		return fmt.Sprintf("invalid %s: %v is out of range", name, fe.Value())
	case "gtefield":
		return fmt.Sprintf("invalid %s: must not be shorter than status-interval", name)
	default:
		return fmt.Sprintf("invalid %s: failed %s validation", name, fe.Tag())
	}
}
