package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

func sampleNotification() appointment.Notification {
	return appointment.Notification{
		ServiceID:  "service_x",
		TemplateID: "template_y",
		Params: appointment.NotificationParams{
			ToName:          "Admin",
			AppointmentID:   "abc-123",
			ClientName:      "Jane Doe",
			PhoneNumber:     "+14155550100",
			AppointmentDate: "June 1, 2025",
			AppointmentTime: "07:00 PM - 08:00 PM",
		},
	}
}

func TestEmailJS_SendsTemplatePayload(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	n := NewEmailJS(EmailJSConfig{Endpoint: srv.URL, PublicKey: "pub"}, srv.Client())
	if err := n.Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if got["service_id"] != "service_x" || got["template_id"] != "template_y" || got["user_id"] != "pub" {
		t.Fatalf("unexpected envelope: %v", got)
	}
	if _, ok := got["accessToken"]; ok {
		t.Fatal("accessToken must be omitted when no private key is configured")
	}

	params, ok := got["template_params"].(map[string]any)
	if !ok {
		t.Fatalf("missing template_params: %v", got)
	}
	want := map[string]string{
		"to_name":          "Admin",
		"appointment_id":   "abc-123",
		"client_name":      "Jane Doe",
		"phone_number":     "+14155550100",
		"appointment_date": "June 1, 2025",
		"appointment_time": "07:00 PM - 08:00 PM",
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("template_params[%s]: expected %q, got %v", k, v, params[k])
		}
	}
}

func TestEmailJS_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The service ID is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewEmailJS(EmailJSConfig{Endpoint: srv.URL, PublicKey: "pub"}, srv.Client())
	err := n.Notify(context.Background(), sampleNotification())
	if err == nil {
		t.Fatal("expected an error for a 400 response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestEmailJS_UnreachableEndpointIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	n := NewEmailJS(EmailJSConfig{Endpoint: url, PublicKey: "pub"}, nil)
	if err := n.Notify(context.Background(), sampleNotification()); err == nil {
		t.Fatal("expected an error for a closed endpoint")
	}
}

func TestNewEmailJS_DefaultEndpoint(t *testing.T) {
	n := NewEmailJS(EmailJSConfig{PublicKey: "pub"}, nil)
	if n.endpoint != DefaultEmailJSEndpoint {
		t.Fatalf("expected %s, got %s", DefaultEmailJSEndpoint, n.endpoint)
	}
}
