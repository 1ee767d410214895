package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// pricePlaces — допустимое количество знаков после запятой в цене.
const pricePlaces = 2

// productValidator проверяет входные данные товара тегами validate.
type productValidator struct {
	v *validator.Validate
}

func newProductValidator() *productValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В сообщениях используются имена полей API
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "source_website", func(fl validator.FieldLevel) bool {
		return domain.SourceWebsite(fl.Field().String()).IsValid()
	})
	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).IsValid()
	})
	mustRegister(v, "sub_category", func(fl validator.FieldLevel) bool {
		return domain.SubCategory(fl.Field().String()).IsValid()
	})

	return &productValidator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func (p *productValidator) validateCreate(req *CreateProductReq) error {
	return p.validate(req, req.Price)
}

func (p *productValidator) validateUpdate(req *UpdateProductReq) error {
	return p.validate(req, req.Price)
}

func (p *productValidator) validate(req any, price *decimal.Decimal) error {
	var messages []string

	if err := p.v.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			messages = append(messages, fieldMessage(fe))
		}
	}

	if price != nil {
		messages = append(messages, priceMessages(*price)...)
	}

	if len(messages) > 0 {
		return e.NewValidationError(messages...)
	}

	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", field)
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL address", field)
	case "source_website":
		return fmt.Sprintf("%s must be one of the following values: %s", field, joinValues(domain.SourceWebsites()))
	case "category":
		return fmt.Sprintf("%s must be one of the following values: %s", field, domain.CategoryElectronics)
	case "sub_category":
		return fmt.Sprintf("%s must be one of the following values: %s", field, joinValues(domain.SubCategories()))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func priceMessages(price decimal.Decimal) []string {
	var messages []string
	if price.IsNegative() {
		messages = append(messages, "price must not be less than 0")
	}
	if !price.Equal(price.Round(pricePlaces)) {
		messages = append(messages, "price must have at most 2 decimal places")
	}
	return messages
}

func joinValues[T ~string](values []T) string {
	s := make([]string, 0, len(values))
	for _, v := range values {
		s = append(s, string(v))
	}
	return strings.Join(s, ", ")
}
