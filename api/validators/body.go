package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	// decimals validate as their float value so gt/lte apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := asDecimal(field); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{}, Amount{})
	_ = v.RegisterValidation("maxdp", validateMaxDecimalPlaces)
	return v
}

var errAmountNotNumber = errors.New("amount must be a JSON number")

// Amount is a decimal that only decodes from a bare JSON number. Quoted
// values and other literals are rejected.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || (b[0] != '-' && (b[0] < '0' || b[0] > '9')) {
		return errAmountNotNumber
	}
	return a.Decimal.UnmarshalJSON(b)
}

func asDecimal(field reflect.Value) (decimal.Decimal, bool) {
	if !field.IsValid() || !field.CanInterface() {
		return decimal.Decimal{}, false
	}
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d, true
	case Amount:
		return d.Decimal, true
	}
	return decimal.Decimal{}, false
}

// sourceDecimal reads the decimal behind the validated field. fl.Field()
// already holds the float produced by the custom type func.
func sourceDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() != reflect.Struct {
		return decimal.Decimal{}, false
	}
	field := parent.FieldByName(fl.StructFieldName())
	for field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return decimal.Decimal{}, false
		}
		field = field.Elem()
	}
	return asDecimal(field)
}

// validateMaxDecimalPlaces backs the maxdp=N tag on numeric fields.
func validateMaxDecimalPlaces(fl validator.FieldLevel) bool {
	places, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	if d, ok := sourceDecimal(fl); ok {
		return DecimalPlaces(d) <= places
	}
	field := fl.Field()
	var d decimal.Decimal
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		d = decimal.NewFromFloat(field.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	case reflect.String:
		parsed, err := decimal.NewFromString(field.String())
		if err != nil {
			return false
		}
		d = parsed
	default:
		return false
	}
	return DecimalPlaces(d) <= places
}

// DecimalPlaces counts significant digits after the decimal point.
func DecimalPlaces(d decimal.Decimal) int {
	exp := d.Exponent()
	if exp >= 0 || d.IsZero() {
		return 0
	}
	digits := strings.TrimRight(d.Coefficient().String(), "0")
	trailing := len(d.Coefficient().String()) - len(digits)
	places := int(-exp) - trailing
	if places < 0 {
		return 0
	}
	return places
}

// DecodeJSONBody decodes a single strict JSON object into dest and runs
// struct validation.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, errAmountNotNumber) {
			return FieldError("amount", "must be a number")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if decoder.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid request body").WithDetails(map[string]any{"error": "body must contain a single JSON object"})
	}
	return Struct(dest)
}

// Struct validates an already decoded value.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// FieldError builds the same validation error shape for checks done outside
// struct tags.
func FieldError(field, msg string) *pkgerrors.Error {
	return newValidationError(map[string]string{field: msg})
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			if _, seen := details[fieldErr.Field()]; seen {
				continue
			}
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return newValidationError(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func newValidationError(details map[string]string) *pkgerrors.Error {
	fields := make([]string, 0, len(details))
	for field := range details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+" "+details[field])
	}
	msg := "validation failed: " + strings.Join(parts, ", ")
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "maxdp":
		return fmt.Sprintf("must have at most %s decimal places", fe.Param())
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid UUID"
	}
	return "is invalid"
}
