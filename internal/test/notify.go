package test

import (
	"context"
	"sync"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

// SentMail is one recorded Notifier.Send call.
type SentMail struct {
	To      string
	Subject string
	HTML    string
}

// NotifierStub records sends. Errors maps a recipient to the error it gets.
type NotifierStub struct {
	Errors map[string]error
	Err    error

	mu       sync.Mutex
	sent     []SentMail
	attempts int
}

func (s *NotifierStub) Send(_ context.Context, to, subject, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if err, ok := s.Errors[to]; ok {
		return err
	}
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, SentMail{To: to, Subject: subject, HTML: html})
	return nil
}

// Sent returns successfully delivered messages.
func (s *NotifierStub) Sent() []SentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMail(nil), s.sent...)
}

// Attempts returns the number of Send calls.
func (s *NotifierStub) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// OutboxStub collects enqueued notifications. Full makes Enqueue drop.
type OutboxStub struct {
	Full bool

	mu       sync.Mutex
	messages []model.Notification
}

func (s *OutboxStub) Enqueue(msg model.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Full {
		return false
	}
	s.messages = append(s.messages, msg)
	return true
}

// Messages returns enqueued notifications in order.
func (s *OutboxStub) Messages() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.messages...)
}

// Kinds lists kinds of enqueued notifications.
func (s *OutboxStub) Kinds() []model.NotificationKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]model.NotificationKind, 0, len(s.messages))
	for _, m := range s.messages {
		kinds = append(kinds, m.Kind)
	}
	return kinds
}

// EventPublisherStub records published events.
type EventPublisherStub struct {
	Err error

	mu     sync.Mutex
	events []model.OrderEvent
}

func (s *EventPublisherStub) Publish(_ context.Context, event model.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.Err
}

// Events returns published events in order.
func (s *EventPublisherStub) Events() []model.OrderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OrderEvent(nil), s.events...)
}

// SweepRecorderStub keeps every recorded sweep.
type SweepRecorderStub struct {
	mu      sync.Mutex
	results []model.SweepResult
}

func (s *SweepRecorderStub) RecordSweep(_ context.Context, result model.SweepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}

// Results returns recorded sweeps.
func (s *SweepRecorderStub) Results() []model.SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SweepResult(nil), s.results...)
}

// ComposerStub renders plain subjects and sends admin mail to AdminAddress.
type ComposerStub struct {
	AdminAddress string
	Err          error
}

func (c ComposerStub) render(kind model.NotificationKind, order *model.Order, to string) (model.Notification, error) {
	if c.Err != nil {
		return model.Notification{}, c.Err
	}
	return model.Notification{
		Kind:      kind,
		Reference: order.Reference,
		To:        to,
		Subject:   string(kind) + " - " + order.Reference,
		HTML:      "<p>" + order.Reference + "</p>",
	}, nil
}

func (c ComposerStub) OrderConfirmation(order *model.Order) (model.Notification, error) {
	return c.render(model.NotificationOrderConfirmation, order, order.CustomerEmail)
}

func (c ComposerStub) AdminNewOrder(order *model.Order) (model.Notification, error) {
	return c.render(model.NotificationAdminNewOrder, order, c.AdminAddress)
}

func (c ComposerStub) PaymentReceived(order *model.Order) (model.Notification, error) {
	return c.render(model.NotificationPaymentReceived, order, order.CustomerEmail)
}

func (c ComposerStub) OrderExpired(order *model.Order) (model.Notification, error) {
	return c.render(model.NotificationOrderExpired, order, order.CustomerEmail)
}

func (c ComposerStub) Instructions(order *model.Order) model.PaymentInstructions {
	return model.PaymentInstructions{
		Method:    order.PaymentMethod,
		Recipient: "pay@example.com",
		Amount:    order.TotalAmount.Round(2),
		Note:      order.Reference,
		Deadline:  order.ExpiresAt,
	}
}

