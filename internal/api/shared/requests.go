package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/todo-api/internal/domain"
)

// MaxBodyBytes caps the size of a decoded request body.
const MaxBodyBytes = 1 << 20

// ErrMalformedJSON is returned by DecodeJSON for bodies that are not a JSON
// object of the expected shape.
var ErrMalformedJSON = errors.New("malformed JSON request body")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("query")
		if name == "" {
			name = strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// DecodeJSON decodes the request body into v. An empty body leaves v
// untouched. A value of the wrong JSON type for a known field is reported as
// a *domain.ValidationError on that field; any other decoding failure
// returns ErrMalformedJSON.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	err := json.NewDecoder(body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.NewValidationError(typeErr.Field, typeMessage(typeErr.Field, typeErr.Type))
	}
	return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
}

func typeMessage(field string, t reflect.Type) string {
	label := FieldLabel(field)
	if t == nil {
		return fmt.Sprintf("The %s field is invalid.", label)
	}
	switch t.Kind() {
	case reflect.String:
		return fmt.Sprintf("The %s field must be a string.", label)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("The %s field must be an integer.", label)
	case reflect.Bool:
		return fmt.Sprintf("The %s field must be true or false.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}

// FieldLabel turns a wire field name into the form used in messages.
func FieldLabel(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// ValidateRequest checks v against its validate tags. Failures are returned as
// a *domain.ValidationError in struct field order.
func ValidateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	label := FieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	case "calendardate":
		return fmt.Sprintf("The %s field must be a valid date.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
