package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-storefront/internal/model"
)

var ErrNotConfigured = errors.New("smtp is not configured")

// sendTimeout bounds one whole SMTP exchange, dial included.
const sendTimeout = 10 * time.Second

// Message is one outbound email with both renderings.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service sends transactional email over SMTP.
type Service struct {
	host     string
	port     string
	username string
	password string
	from     string
	timeout  time.Duration
	send     sendFunc
}

func NewService(host, port, username, password, from string) *Service {
	s := &Service{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  sendTimeout,
	}
	s.send = s.dialAndSend
	return s
}

func (s *Service) Configured() bool {
	return s != nil && s.host != ""
}

// SendOrderStatus tells the customer their order moved to status.
func (s *Service) SendOrderStatus(to, orderID string, status model.OrderStatus) error {
	tmpl := statusTemplate(status)
	return s.Send(Message{
		To:      to,
		Subject: fmt.Sprintf("%s - Order #%s", tmpl.Title, ShortOrderID(orderID)),
		Text:    BuildOrderStatusText(orderID, tmpl),
		HTML:    BuildOrderStatusHTML(orderID, tmpl),
	})
}

// SendOrderConfirmation sends the receipt for a newly placed order.
func (s *Service) SendOrderConfirmation(to string, order *model.Order) error {
	return s.Send(Message{
		To:      to,
		Subject: fmt.Sprintf("Order Confirmation - Order #%s", ShortOrderID(order.ID)),
		Text:    BuildOrderConfirmationText(order),
		HTML:    BuildOrderConfirmationHTML(order),
	})
}

func (s *Service) Send(m Message) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if m.To == "" {
		return errors.New("email: missing recipient")
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.send(addr, auth, s.from, []string{m.To}, s.compose(m))
}

// dialAndSend performs the same exchange as smtp.SendMail, with every
// network step under one deadline.
func (s *Service) dialAndSend(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		conn.Close()
		return err
	}
	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (s *Service) compose(m Message) []byte {
	boundary := "b-" + strings.ReplaceAll(uuid.NewString(), "-", "")

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(m.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(m.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// ShortOrderID is the customer-facing order number: the last six
// characters of the id, upper-cased.
func ShortOrderID(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}
