// Package validation содержит схемы валидации входных данных форм.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldErrors сопоставляет имени поля формы список сообщений об ошибках.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	for _, m := range fe[field] {
		if m == msg {
			return
		}
	}
	fe[field] = append(fe[field], msg)
}

// Fields возвращает отсортированный список полей с ошибками.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError возвращается строгим вариантом разбора формы.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid form fields: " + strings.Join(e.Fields.Fields(), ", ")
}

// AsValidationError извлекает ValidationError из цепочки ошибок.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// В ошибках используем имена полей формы, а не Go-структуры.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Сумма проверяется по значению в центах.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return toCents(d)
		}
		return nil
	}, decimal.Decimal{})

	return v
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// check прогоняет структуру через валидатор и переводит ошибки в сообщения по полям.
func check(s interface{}, messages map[string]string) (FieldErrors, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fe := FieldErrors{}
	for _, ve := range verrs {
		msg, ok := messages[ve.Field()]
		if !ok {
			msg = "Invalid value."
		}
		fe.add(ve.Field(), msg)
	}
	return fe, nil
}
