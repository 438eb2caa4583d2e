package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends the booking as a plain-text email via unauthenticated SMTP
// (Mailpit-compatible).
type SMTP struct {
	addr     string
	from     string
	to       string
	sendMail sendMailFunc
}

func NewSMTP(host, port, from, to string) *SMTP {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@booking.local"
	}
	return &SMTP{
		addr:     fmt.Sprintf("%s:%s", host, port),
		from:     from,
		to:       strings.TrimSpace(to),
		sendMail: smtp.SendMail,
	}
}

func (s *SMTP) Notify(ctx context.Context, n appointment.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("New appointment %s", n.Params.AppointmentID)
	msg := buildMessage(s.from, s.to, subject, renderBody(n))

	if err := s.sendMail(s.addr, nil, s.from, []string{s.to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", s.addr, err)
	}
	return nil
}

func renderBody(n appointment.Notification) string {
	p := n.Params
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", p.ToName)
	b.WriteString("A new appointment has been booked.\r\n\r\n")
	fmt.Fprintf(&b, "Appointment ID: %s\r\n", p.AppointmentID)
	fmt.Fprintf(&b, "Name: %s\r\n", p.ClientName)
	fmt.Fprintf(&b, "Phone: %s\r\n", p.PhoneNumber)
	fmt.Fprintf(&b, "Date: %s\r\n", p.AppointmentDate)
	fmt.Fprintf(&b, "Time: %s\r\n", p.AppointmentTime)
	return b.String()
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}
