package usecase

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

// CreateOrderInput is the customer checkout payload.
type CreateOrderInput struct {
	CustomerName         string                 `json:"customer_name" validate:"required,max=200"`
	CustomerEmail        string                 `json:"customer_email" validate:"omitempty,email,max=254"`
	CustomerPhone        string                 `json:"customer_phone" validate:"omitempty,max=40"`
	OrderType            model.OrderType        `json:"order_type" validate:"required,oneof=pickup delivery"`
	DeliveryAddress      *model.DeliveryAddress `json:"delivery_address"`
	DeliveryInstructions string                 `json:"delivery_instructions" validate:"max=1000"`
	PaymentMethod        model.PaymentMethod    `json:"payment_method" validate:"required,oneof=zelle cashapp"`
	Items                []ItemInput            `json:"items" validate:"dive"`
}

// ItemInput is one cart line. Price is a snapshot of the catalog price.
type ItemInput struct {
	ProductName  string          `json:"product_name" validate:"required,max=200"`
	ProductPrice decimal.Decimal `json:"product_price" validate:"gte=0"`
	Quantity     int             `json:"quantity" validate:"gt=0,max=1000"`
	ProductImage string          `json:"product_image" validate:"max=2048"`
}

// UnmarshalJSON also accepts the storefront cart keys name, price and image.
func (i *ItemInput) UnmarshalJSON(data []byte) error {
	type plain ItemInput
	var aux struct {
		plain
		Name  string           `json:"name"`
		Price *decimal.Decimal `json:"price"`
		Image *string          `json:"image"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ProductName == "" {
		aux.ProductName = aux.Name
	}
	if aux.ProductPrice.IsZero() && aux.Price != nil {
		aux.ProductPrice = *aux.Price
	}
	if aux.ProductImage == "" && aux.Image != nil {
		aux.ProductImage = *aux.Image
	}
	*i = ItemInput(aux.plain)
	return nil
}

// maxOrderTotal is the largest amount a NUMERIC(10,2) column holds.
var maxOrderTotal = decimal.RequireFromString("99999999.99")

// InputValidator checks checkout payloads before any store interaction.
type InputValidator struct {
	validate *validatorv10.Validate
}

// NewInputValidator registers decimal handling and the delivery address rule.
func NewInputValidator() *InputValidator {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterStructValidation(createOrderStructValidation, CreateOrderInput{})
	return &InputValidator{validate: v}
}

// ValidateCreateOrder returns a *ValidationError describing every rejected field.
func (v *InputValidator) ValidateCreateOrder(in CreateOrderInput) error {
	if len(in.Items) == 0 {
		return domainErrors.ErrEmptyItems
	}
	if err := v.validate.Struct(in); err != nil {
		return toValidationError(err)
	}
	return nil
}

func createOrderStructValidation(sl validatorv10.StructLevel) {
	in := sl.Current().Interface().(CreateOrderInput)

	total := decimal.Zero
	for _, item := range in.Items {
		total = total.Add(item.ProductPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if total.GreaterThan(maxOrderTotal) {
		sl.ReportError(in.Items, "items", "Items", "max_total", maxOrderTotal.StringFixed(2))
	}

	if in.OrderType != model.OrderTypeDelivery {
		return
	}
	addr := in.DeliveryAddress
	if addr == nil {
		sl.ReportError(in.DeliveryAddress, "delivery_address", "DeliveryAddress", "required", "")
		return
	}
	if strings.TrimSpace(addr.Street) == "" {
		sl.ReportError(addr.Street, "delivery_address.street", "Street", "required", "")
	}
	if strings.TrimSpace(addr.City) == "" {
		sl.ReportError(addr.City, "delivery_address.city", "City", "required", "")
	}
	if strings.TrimSpace(addr.ZipCode) == "" {
		sl.ReportError(addr.ZipCode, "delivery_address.zipCode", "ZipCode", "required", "")
	}
}

func toValidationError(err error) error {
	var fieldErrs validatorv10.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &domainErrors.ValidationError{Fields: map[string]string{"request": err.Error()}}
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe.Namespace())] = fieldMessage(fe)
	}
	return &domainErrors.ValidationError{Fields: fields}
}

// fieldPath drops the root struct name: "CreateOrderInput.items[0].quantity" -> "items[0].quantity".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldMessage(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must not be negative"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		switch fe.Kind() {
		case reflect.Int, reflect.Int64, reflect.Float64:
			return "must be at most " + fe.Param()
		}
		return "is too long"
	case "max_total":
		return "order total must not exceed " + fe.Param()
	default:
		return "is invalid"
	}
}
