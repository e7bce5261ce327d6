package domain

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// Envelope messages for rejected product payloads
const (
	MsgRequiredFields  = "Name, price, and category are required"
	MsgPricePositive   = "Price must be greater than 0"
	MsgPriceNumeric    = "Price must be a valid number"
	MsgStockNegative   = "Stock must not be negative"
	MsgPriceTooLarge   = "Price must not exceed 9999999999999.99"
	MsgStockTooLarge   = "Stock must not exceed 2147483647"
	MsgNameTooLong     = "Product name must be at most 255 characters"
	MsgCategoryTooLong = "Category must be at most 100 characters"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// productUpdateRules holds the constraints checked on a partial update.
type productUpdateRules struct {
	Name     *string  `json:"name" validate:"omitempty,max=255"`
	Price    *float64 `json:"price" validate:"omitempty,gt=0,lte=9999999999999.99"`
	Category *string  `json:"category" validate:"omitempty,max=100"`
	Stock    *int     `json:"stock" validate:"omitempty,gte=0,lte=2147483647"`
}

// FieldError describes a single rejected field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a product payload breaks a rule.
// Message is the single-line summary reported to API callers.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Field returns the message recorded for field, if any.
func (e *ValidationError) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message, true
		}
	}
	return "", false
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateCreate checks the rules for a new product
func (in ProductInput) ValidateCreate() error {
	return toValidationError(validate.Struct(in))
}

// ValidateUpdate checks the rules for a partial update. Only supplied fields are checked.
func (in ProductInput) ValidateUpdate() error {
	return toValidationError(validate.Struct(productUpdateRules{
		Name:     in.Name,
		Price:    in.Price,
		Category: in.Category,
		Stock:    in.Stock,
	}))
}

// RoundPrice rounds a price to whole cents, the precision every store keeps.
func RoundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}

// Normalize trims the text fields and rounds the price to cents.
func (in ProductInput) Normalize() ProductInput {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		t := strings.TrimSpace(*s)
		return &t
	}
	in.Name = trim(in.Name)
	in.Category = trim(in.Category)
	in.Description = trim(in.Description)
	if in.Price != nil {
		price := RoundPrice(*in.Price)
		in.Price = &price
	}
	return in
}

// DecodeProductInput coerces a decoded JSON object into a ProductInput.
// Price and stock may arrive as numbers or numeric strings. A stock that is
// not numeric is treated as absent.
func DecodeProductInput(raw map[string]any) (ProductInput, error) {
	var in ProductInput

	in.Name = stringField(raw, "name")
	in.Category = stringField(raw, "category")
	in.Description = stringField(raw, "description")

	if v, ok := present(raw, "price"); ok {
		price, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			return in, &ValidationError{
				Message: MsgPriceNumeric,
				Fields:  []FieldError{{Field: "price", Message: fieldMessage("price", "numeric")}},
			}
		}
		in.Price = &price
	}

	if v, ok := present(raw, "stock"); ok {
		if stock, err := cast.ToIntE(v); err == nil {
			in.Stock = &stock
		}
	}

	return in.Normalize(), nil
}

// present returns the value under key unless it is missing, null or an empty string.
func present(raw map[string]any, key string) (any, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func stringField(raw map[string]any, key string) *string {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil
	}
	return &s
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &ValidationError{}
	missing := false
	for _, fe := range fieldErrs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe.Field(), fe.Tag()),
		})

		switch fe.Tag() {
		case "required", "notblank":
			missing = true
		case "gt":
			if ve.Message == "" {
				ve.Message = MsgPricePositive
			}
		case "gte":
			if ve.Message == "" {
				ve.Message = MsgStockNegative
			}
		case "lte", "max":
			if ve.Message == "" {
				ve.Message = fieldMessage(fe.Field(), fe.Tag())
			}
		}
	}

	if missing || ve.Message == "" {
		ve.Message = MsgRequiredFields
	}
	return ve
}

func fieldMessage(field, tag string) string {
	if tag == "lte" || tag == "max" {
		switch field {
		case "name":
			return MsgNameTooLong
		case "price":
			return MsgPriceTooLarge
		case "category":
			return MsgCategoryTooLong
		case "stock":
			return MsgStockTooLarge
		}
	}

	switch field {
	case "name":
		return "Product name is required"
	case "price":
		return "Valid price is required"
	case "category":
		return "Category is required"
	case "stock":
		return "Stock must not be negative"
	default:
		return "Invalid value for " + field + " (" + tag + ")"
	}
}
