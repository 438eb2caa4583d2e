package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	calls []Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, n)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingStore struct {
	MemoryStore
}

func (s *failingStore) Set(context.Context, Record) error {
	return errors.New("disk full")
}

func newTestService(store Store, notifier Notifier) *Service {
	return NewService(store, notifier, DefaultSettings(), nil,
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestSubmit_PersistsRecordOnSuccess(t *testing.T) {
	store := NewMemoryStore()
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	rec, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Fatalf("expected a UUID id, got %q", rec.ID)
	}

	want := Record{
		ID:    rec.ID,
		Name:  "Jane Doe",
		Phone: "+14155550100",
		Date:  "June 1, 2025",
		Time:  "07:00 PM - 08:00 PM",
	}
	if rec != want {
		t.Fatalf("expected %+v, got %+v", want, rec)
	}

	stored, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("expected stored record: %v", err)
	}
	if stored != want {
		t.Fatalf("stored record mismatch: expected %+v, got %+v", want, stored)
	}
}

func TestSubmit_SendsFixedPayload(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(NewMemoryStore(), notifier)

	rec, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.count())
	}

	got := notifier.calls[0]
	want := Notification{
		ServiceID:  DefaultServiceID,
		TemplateID: DefaultTemplateID,
		Params: NotificationParams{
			ToName:          "Admin",
			AppointmentID:   rec.ID,
			ClientName:      "Jane Doe",
			PhoneNumber:     "+14155550100",
			AppointmentDate: "June 1, 2025",
			AppointmentTime: "07:00 PM - 08:00 PM",
		},
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSubmit_InvalidRequestHasNoSideEffects(t *testing.T) {
	store := NewMemoryStore()
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	req := validRequest()
	req.Phone = "123"

	_, err := svc.Submit(context.Background(), req)

	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fieldErrs["phone"] == "" {
		t.Fatalf("expected phone error, got %v", fieldErrs)
	}
	if notifier.count() != 0 {
		t.Fatal("notifier must not be called for an invalid request")
	}
	if _, err := store.Get(context.Background()); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected empty store, got %v", err)
	}
}

func TestSubmit_NotificationFailureKeepsPreviousRecord(t *testing.T) {
	store := NewMemoryStore()
	previous := Record{ID: "prev", Name: "Old", Phone: "0000000000", Date: "May 1, 2025", Time: "05:00 AM - 06:00 AM"}
	if err := store.Set(context.Background(), previous); err != nil {
		t.Fatal(err)
	}

	notifier := &fakeNotifier{err: errors.New("service unavailable")}
	svc := newTestService(store, notifier)

	_, err := svc.Submit(context.Background(), validRequest())
	if !errors.Is(err, ErrNotificationFailed) {
		t.Fatalf("expected ErrNotificationFailed, got %v", err)
	}

	stored, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("expected previous record to remain: %v", err)
	}
	if stored != previous {
		t.Fatalf("store changed after failed notification: %+v", stored)
	}
}

func TestSubmit_StoreFailureIsReported(t *testing.T) {
	svc := newTestService(&failingStore{}, &fakeNotifier{})

	_, err := svc.Submit(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected an error when the store write fails")
	}
	if errors.Is(err, ErrNotificationFailed) {
		t.Fatal("store failure must not be reported as a notification failure")
	}
}

func TestSubmit_IdenticalRequestsGetDistinctIDs(t *testing.T) {
	store := NewMemoryStore()
	svc := newTestService(store, &fakeNotifier{})

	first, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}

	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both were %s", first.ID)
	}

	stored, _ := store.Get(context.Background())
	if stored.ID != second.ID {
		t.Fatalf("expected the latest submission to win, stored %s", stored.ID)
	}
}

func TestSubmit_ConcurrentSubmissionsStoreLastNotified(t *testing.T) {
	store := NewMemoryStore()
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	faker := gofakeit.New(42)
	reqs := make([]Request, 20)
	for i := range reqs {
		reqs[i] = validRequest()
		reqs[i].Name = faker.Name()
	}

	var wg sync.WaitGroup
	for _, req := range reqs {
		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			if _, err := svc.Submit(context.Background(), req); err != nil {
				t.Errorf("Submit failed: %v", err)
			}
		}(req)
	}
	wg.Wait()

	if notifier.count() != len(reqs) {
		t.Fatalf("expected %d notifications, got %d", len(reqs), notifier.count())
	}

	ids := make(map[string]bool, len(reqs))
	for _, n := range notifier.calls {
		if ids[n.Params.AppointmentID] {
			t.Fatalf("duplicate id %s", n.Params.AppointmentID)
		}
		ids[n.Params.AppointmentID] = true
	}

	stored, err := store.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	last := notifier.calls[len(notifier.calls)-1]
	if stored.ID != last.Params.AppointmentID {
		t.Fatalf("expected stored id %s to match last notified %s", stored.ID, last.Params.AppointmentID)
	}
}

func TestCurrentAndReset(t *testing.T) {
	store := NewMemoryStore()
	svc := newTestService(store, &fakeNotifier{})

	if _, err := svc.Current(context.Background()); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}

	rec, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Current(context.Background())
	if err != nil || got != rec {
		t.Fatalf("expected %+v, got %+v (%v)", rec, got, err)
	}

	if err := svc.Reset(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Current(context.Background()); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord after reset, got %v", err)
	}
}

func TestWithIDGenerator(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeNotifier{}, DefaultSettings(), nil,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "fixed-id" }),
	)

	rec, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != "fixed-id" {
		t.Fatalf("expected injected id, got %s", rec.ID)
	}
}
