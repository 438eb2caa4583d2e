package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestSMTP_BuildsMessage(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)

	s := NewSMTP("mailpit", "1025", "", "desk@example.com")
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	if err := s.Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if gotAddr != "mailpit:1025" {
		t.Errorf("expected addr mailpit:1025, got %s", gotAddr)
	}
	if gotFrom != "no-reply@booking.local" {
		t.Errorf("expected default sender, got %s", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "desk@example.com" {
		t.Errorf("unexpected recipients %v", gotTo)
	}

	for _, want := range []string{
		"Subject: New appointment abc-123",
		"Hello Admin,",
		"Name: Jane Doe",
		"Phone: +14155550100",
		"Date: June 1, 2025",
		"Time: 07:00 PM - 08:00 PM",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSMTP_SendFailureIsError(t *testing.T) {
	s := NewSMTP("mailpit", "1025", "", "desk@example.com")
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	if err := s.Notify(context.Background(), sampleNotification()); err == nil {
		t.Fatal("expected an error")
	}
}
