package public

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/langowen/fxconverter/internal/converter/presenter"
	"github.com/langowen/fxconverter/internal/converter/service"
	"github.com/langowen/fxconverter/internal/entities"
)

type convertInput struct {
	From   string   `json:"from" validate:"required,currency"`
	To     string   `json:"to" validate:"required,currency"`
	Amount *float64 `json:"amount" validate:"required,gte=0"`
}

func (in convertInput) request() service.ConvertRequest {
	from, _ := entities.ParseCurrencyCode(in.From)
	to, _ := entities.ParseCurrencyCode(in.To)

	return service.ConvertRequest{
		From:   from,
		To:     to,
		Amount: *in.Amount,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		_, ok := entities.ParseCurrencyCode(fl.Field().String())
		return ok
	})

	return v
}

func validationMessage(err error) string {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid input"
	}

	msgs := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "currency":
			msgs = append(msgs, fmt.Sprintf("%s: unsupported currency %q", fe.Field(), fe.Value()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be zero or greater", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}

	return strings.Join(msgs, "; ")
}

// readForm keeps whatever the user picked so the page can be re-rendered
// with their selections intact.
func (s *Server) readForm(from, to, amount string) (convertInput, presenter.Form) {
	in := convertInput{From: from, To: to}

	form := presenter.DefaultForm()
	form.Amount = amount
	if code, ok := entities.ParseCurrencyCode(from); ok {
		form.From = code
	}
	if code, ok := entities.ParseCurrencyCode(to); ok {
		form.To = code
	}

	if amount = strings.TrimSpace(amount); amount != "" {
		v, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			form.Error = "amount must be a number"
			return in, form
		}
		in.Amount = &v
	}

	if err := s.validate.Struct(in); err != nil {
		form.Error = validationMessage(err)
	}

	return in, form
}
