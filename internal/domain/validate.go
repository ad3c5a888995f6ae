package domain

import (
	"errors"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError carries a message safe to show the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("whole", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 {
			return false
		}
		f := fl.Field().Float()
		return f == math.Trunc(f)
	})
	return v
}

var fieldMessages = map[string]string{
	"Item":         "Item name is required",
	"Quantity":     "Valid quantity is required",
	"SellingPrice": "Valid selling price is required",
	"CostPrice":    "Cost price cannot be negative",
	"GSTRate":      "GST rate must be between 0 and 100",
	"Amount":       "Valid amount is required",
	"Description":  "Description is required",
	"Name":         "Customer name is required",
	"Email":        "Valid email is required",
}

// Validate checks struct tags and reports the first failing field as a ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := fieldMessages[fieldErrs[0].StructField()]; ok {
			return &ValidationError{Message: msg}
		}
		return &ValidationError{Message: fieldErrs[0].Error()}
	}
	return err
}
