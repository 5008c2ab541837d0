// Package form - форма поиска на стороне клиента: валидация полей и формат номера для показа.
package form

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"user-search/internal/domain"
)

// numberLength - длина номера без дефисов
const numberLength = 6

// Сообщения валидации
const (
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Invalid email address"
	MsgNumberInvalid = "Invalid number format"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("masked_number", func(fl validator.FieldLevel) bool {
		digits := NormalizeNumber(fl.Field().String())
		if len(digits) != numberLength {
			return false
		}
		for _, r := range digits {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	return v
}

// SearchForm - значения полей формы
type SearchForm struct {
	Email  string `validate:"required,email"`
	Number string `validate:"omitempty,masked_number"`
}

// FieldError - ошибка одного поля формы
type FieldError struct {
	Field   string
	Message string
}

// ValidationError - все ошибки формы
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// ParseLine - разбирает строку "email [number]"
func ParseLine(line string) SearchForm {
	fields := strings.Fields(line)
	var f SearchForm
	if len(fields) > 0 {
		f.Email = fields[0]
	}
	if len(fields) > 1 {
		f.Number = fields[1]
	}
	return f
}

// Validate - проверяет поля, возвращает *ValidationError
func (f SearchForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "Email":
		if fe.Tag() == "required" {
			return MsgEmailRequired
		}
		return MsgEmailInvalid
	case "Number":
		return MsgNumberInvalid
	}
	return fe.Error()
}

// Query - нормализованный запрос для отправки
func (f SearchForm) Query() domain.SearchQuery {
	return domain.NewSearchQuery(f.Email, NormalizeNumber(f.Number))
}

// NormalizeNumber - убирает дефисы маски ("12-34-56" -> "123456")
func NormalizeNumber(number string) string {
	return strings.ReplaceAll(strings.TrimSpace(number), "-", "")
}

// FormatNumber - номер для показа: "123456" -> "12-34-56". Другие длины не меняются.
func FormatNumber(number string) string {
	if len(number) != numberLength {
		return number
	}
	return number[0:2] + "-" + number[2:4] + "-" + number[4:6]
}
