package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/bootstrap"
	"github.com/hackgods/appointment-booking/internal/config"
)

func main() {
	clearState := flag.Bool("clear", false, "remove the stored appointment instead of seeding one")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.StoreBackend == config.StoreMemory {
		log.Fatal("STORE_BACKEND=memory does not outlive this process; choose redis, postgres or mongo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, _, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	if *clearState {
		if err := store.Clear(ctx); err != nil {
			log.Fatalf("clear store: %v", err)
		}
		log.Printf("cleared %s from %s", cfg.StateKey, cfg.StoreBackend)
		return
	}

	rec := fakeRecord(cfg.Booking)
	if err := store.Set(ctx, rec); err != nil {
		log.Fatalf("seed store: %v", err)
	}

	log.Printf("seeded appointment %s for %s on %s at %s", rec.ID, rec.Name, rec.Date, rec.Time)
}

func fakeRecord(settings appointment.Settings) appointment.Record {
	date := time.Now().AddDate(0, 0, gofakeit.Number(1, 30))

	return appointment.Record{
		ID:    uuid.NewString(),
		Name:  gofakeit.Name(),
		Phone: "+1" + gofakeit.Phone(),
		Date:  appointment.FormatDate(date),
		Time:  settings.TimeSlots[gofakeit.Number(0, len(settings.TimeSlots)-1)],
	}
}
