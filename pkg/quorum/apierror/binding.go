package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromBinding turns an error from gin's ShouldBind* family into a 422
// naming the first offending field.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return Validation(fieldMessage(fieldName(verrs[0]), verrs[0]))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			return Validation(fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type))
		}
		return Validation(fmt.Sprintf("expected %s", typeErr.Type))
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return Validation(fmt.Sprintf("%q is not a valid integer", numErr.Num))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return Validation("Invalid JSON body")
	}

	return Validation("Invalid request body")
}

// FieldError is FromBinding for a single value validated on its own, where
// the validator does not know the field's name.
func FieldError(name string, err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return Validation(fieldMessage(name, verrs[0]))
	}
	return Validation(name + ": invalid value")
}

func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return name + ": field required"
	case "email":
		return name + ": value is not a valid email address"
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s: must be %s %s characters", name, bound, fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s: must contain %s %s items", name, bound, fe.Param())
		default:
			return fmt.Sprintf("%s: must be %s %s", name, bound, fe.Param())
		}
	}
	return fmt.Sprintf("%s: failed the %q check", name, fe.Tag())
}
