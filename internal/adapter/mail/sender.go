package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/sweetsbybella/internal/config"
	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
)

// defaultSendTimeout bounds a send whose context carries no deadline.
const defaultSendTimeout = 30 * time.Second

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// SMTPSender delivers HTML emails through an authenticated SMTP relay.
type SMTPSender struct {
	addr      string
	host      string
	from      string
	fromName  string
	auth      smtp.Auth
	dial      dialFunc
	tlsConfig *tls.Config
	now       func() time.Time
	logger    *slog.Logger
}

// NewSMTPSender builds a sender from mail settings. fromName is used as the
// display name of the envelope sender.
func NewSMTPSender(cfg config.MailConfig, fromName string, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		addr:      net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:      cfg.SMTPHost,
		from:      cfg.Sender(),
		fromName:  fromName,
		auth:      smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost),
		dial:      (&net.Dialer{}).DialContext,
		tlsConfig: &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12},
		now:       time.Now,
		logger:    logger,
	}
}

// Send writes one message. The whole SMTP exchange is bounded by the ctx
// deadline, or by defaultSendTimeout when ctx has none.
func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("invalid recipient %q", to)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultSendTimeout)
		defer cancel()
	}

	if err := s.deliver(ctx, to, s.build(to, subject, html)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	s.logger.Debug("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

func (s *SMTPSender) deliver(ctx context.Context, to string, msg []byte) error {
	conn, err := s.dial(ctx, "tcp", s.addr)
	if err != nil {
		return withCtxErr(ctx, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}
	// Cancellation before the deadline unblocks pending reads and writes.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return withCtxErr(ctx, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(s.tlsConfig); err != nil {
			return withCtxErr(ctx, err)
		}
	}
	if ok, _ := client.Extension("AUTH"); ok && s.auth != nil {
		if err := client.Auth(s.auth); err != nil {
			return withCtxErr(ctx, err)
		}
	}
	if err := client.Mail(s.from); err != nil {
		return withCtxErr(ctx, err)
	}
	if err := client.Rcpt(to); err != nil {
		return withCtxErr(ctx, err)
	}
	w, err := client.Data()
	if err != nil {
		return withCtxErr(ctx, err)
	}
	if _, err := w.Write(msg); err != nil {
		return withCtxErr(ctx, err)
	}
	if err := w.Close(); err != nil {
		return withCtxErr(ctx, err)
	}
	return withCtxErr(ctx, client.Quit())
}

// withCtxErr reports the context error when a deadline or cancellation caused err.
func withCtxErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}

func (s *SMTPSender) build(to, subject, html string) []byte {
	var buf bytes.Buffer
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.fromName), s.from)
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(strings.ReplaceAll(html, "\r\n", "\n"), "\n", "\r\n"))
	return buf.Bytes()
}

// DisabledSender is used when no SMTP credentials are configured.
type DisabledSender struct{}

func (DisabledSender) Send(context.Context, string, string, string) error {
	return domainErrors.ErrNotifierDisabled
}
