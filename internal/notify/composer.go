package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

//go:embed templates/*.html
var templateFS embed.FS

const deadlineLayout = "Jan 2, 2006 3:04 PM MST"

// Composer renders the storefront emails and payment instructions.
type Composer struct {
	shop          config.ShopConfig
	adminAddress  string
	paymentWindow time.Duration
	templates     *template.Template
}

// New parses the embedded templates.
func New(cfg *config.Config) (*Composer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Composer{
		shop:          cfg.Shop,
		adminAddress:  cfg.Mail.AdminAddress,
		paymentWindow: cfg.PaymentWindow,
		templates:     tmpl,
	}, nil
}

type itemView struct {
	Name     string
	Quantity int
	Subtotal string
}

type messageView struct {
	ShopName      string
	ContactEmail  string
	Title         string
	Accent        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Reference     string
	Total         string
	OrderType     string
	PaymentMethod string
	Recipient     string
	Window        string
	Deadline      string
	Delivery      bool
	Address       *model.DeliveryAddress
	Instructions  string
	Items         []itemView
}

func (c *Composer) OrderConfirmation(order *model.Order) (model.Notification, error) {
	return c.render(model.NotificationOrderConfirmation, order, order.CustomerEmail,
		"Order Confirmation", "Order Confirmation", "#f8b500")
}

// AdminNewOrder returns a notification with an empty recipient when no admin
// address is configured.
func (c *Composer) AdminNewOrder(order *model.Order) (model.Notification, error) {
	return c.render(model.NotificationAdminNewOrder, order, c.adminAddress,
		"New Order", "New Order Received", "#6c757d")
}

func (c *Composer) PaymentReceived(order *model.Order) (model.Notification, error) {
	return c.render(model.NotificationPaymentReceived, order, order.CustomerEmail,
		"Payment Received", "Payment Received!", "#28a745")
}

func (c *Composer) OrderExpired(order *model.Order) (model.Notification, error) {
	return c.render(model.NotificationOrderExpired, order, order.CustomerEmail,
		"Order Expired", "Order Expired", "#dc3545")
}

// Instructions derives the payment channel details for order.
func (c *Composer) Instructions(order *model.Order) model.PaymentInstructions {
	return model.PaymentInstructions{
		Method:    order.PaymentMethod,
		Recipient: c.recipient(order.PaymentMethod),
		Amount:    order.TotalAmount,
		Note:      order.Reference,
		Deadline:  order.ExpiresAt,
	}
}

func (c *Composer) recipient(method model.PaymentMethod) string {
	if method == model.PaymentMethodCashApp {
		return c.shop.CashAppTag
	}
	return c.shop.ZelleRecipient
}

func (c *Composer) render(kind model.NotificationKind, order *model.Order, to, subject, title, accent string) (model.Notification, error) {
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, string(kind), c.view(order, title, accent)); err != nil {
		return model.Notification{}, fmt.Errorf("render %s: %w", kind, err)
	}
	return model.Notification{
		Kind:      kind,
		Reference: order.Reference,
		To:        to,
		Subject:   subject + " - " + order.Reference,
		HTML:      buf.String(),
	}, nil
}

func (c *Composer) view(order *model.Order, title, accent string) messageView {
	items := make([]itemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemView{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal().StringFixed(2),
		})
	}

	v := messageView{
		ShopName:      c.shop.Name,
		ContactEmail:  c.shop.ContactEmail,
		Title:         title,
		Accent:        accent,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Reference:     order.Reference,
		Total:         order.TotalAmount.StringFixed(2),
		OrderType:     orderTypeLabel(order.OrderType),
		PaymentMethod: methodLabel(order.PaymentMethod),
		Recipient:     c.recipient(order.PaymentMethod),
		Window:        windowLabel(c.paymentWindow),
		Deadline:      order.ExpiresAt.UTC().Format(deadlineLayout),
		Delivery:      order.OrderType == model.OrderTypeDelivery,
		Instructions:  order.DeliveryInstructions,
		Items:         items,
	}
	if v.Delivery {
		v.Address = order.DeliveryAddress
	}
	return v
}

func methodLabel(m model.PaymentMethod) string {
	if m == model.PaymentMethodCashApp {
		return "Cash App"
	}
	return "Zelle"
}

func orderTypeLabel(t model.OrderType) string {
	if t == model.OrderTypeDelivery {
		return "Delivery"
	}
	return "Pickup"
}

// windowLabel renders whole-minute windows as "5 minutes".
func windowLabel(d time.Duration) string {
	if d > 0 && d%time.Minute == 0 {
		if m := int(d / time.Minute); m != 1 {
			return fmt.Sprintf("%d minutes", m)
		}
		return "1 minute"
	}
	return d.String()
}
