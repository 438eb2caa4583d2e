package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	ReadRatio    float64
	ExportRatio  float64
	InvalidRatio float64 // share of bookings sent with a deliberately bad field
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Rejected  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, rejected bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if rejected {
		atomic.AddInt64(&om.Rejected, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]

	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Booking OperationMetrics
	Current OperationMetrics
	Export  OperationMetrics
}

type Simulator struct {
	config  SimConfig
	client  *http.Client
	slots   []string
	metrics Metrics

	mu     sync.Mutex
	issued map[string]struct{} // appointment ids returned by the server
	dupes  int64
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: url=%s duration=%s workers=%d booking=%.2f read=%.2f export=%.2f",
		cfg.APIBaseURL, cfg.Duration, cfg.Workers, cfg.BookingRatio, cfg.ReadRatio, cfg.ExportRatio)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		issued: make(map[string]struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	slots, err := sim.fetchTimeSlots(ctx)
	cancel()
	if err != nil {
		log.Fatalf("load time slots: %v", err)
	}
	sim.slots = slots
	log.Printf("loaded %d time slots", len(slots))

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 4),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.4),
		ExportRatio:  getFloat("SIM_EXPORT_RATIO", 0.1),
		InvalidRatio: getFloat("SIM_INVALID_RATIO", 0.1),
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.ReadRatio + cfg.ExportRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ReadRatio /= total
		cfg.ExportRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("SIM_API_BASE_URL is required")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func (s *Simulator) fetchTimeSlots(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+"/api/time-slots", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		TimeSlots []string `json:"time_slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.TimeSlots) == 0 {
		return nil, fmt.Errorf("server offers no time slots")
	}
	return body.TimeSlots, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	faker := gofakeit.New(uint64(time.Now().UnixNano()) + uint64(workerID))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.BookingRatio:
				s.doBooking(ctx, rng, faker)
			case r < s.config.BookingRatio+s.config.ReadRatio:
				s.doCurrent(ctx)
			default:
				s.doExport(ctx)
			}
		}
	}
}

func (s *Simulator) fakeBooking(rng *rand.Rand, faker *gofakeit.Faker) map[string]string {
	body := map[string]string{
		"name":  faker.Name(),
		"phone": "+1" + faker.Phone(),
		"date":  time.Now().AddDate(0, 0, rng.Intn(60)).Format("2006-01-02"),
		"time":  s.slots[rng.Intn(len(s.slots))],
	}

	if rng.Float64() < s.config.InvalidRatio {
		switch rng.Intn(4) {
		case 0:
			body["name"] = faker.Letter()
		case 1:
			body["phone"] = faker.DigitN(5)
		case 2:
			body["date"] = time.Now().AddDate(0, 0, -1-rng.Intn(30)).Format("2006-01-02")
		case 3:
			body["time"] = ""
		}
	}

	return body
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) {
	body, _ := json.Marshal(s.fakeBooking(rng, faker))

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/api/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	rejected := false

	if err == nil {
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			success = true
			var appt struct {
				ID string `json:"id"`
			}
			bodyBytes, _ := io.ReadAll(resp.Body)
			if json.Unmarshal(bodyBytes, &appt) == nil && appt.ID != "" {
				s.trackID(appt.ID)
			}
		case http.StatusUnprocessableEntity:
			rejected = true
		}
	}

	s.metrics.Booking.Record(latency, success, rejected)
}

func (s *Simulator) trackID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.issued[id]; seen {
		atomic.AddInt64(&s.dupes, 1)
		return
	}
	s.issued[id] = struct{}{}
}

func (s *Simulator) doCurrent(ctx context.Context) {
	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+"/api/appointments/current", nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	rejected := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
		rejected = resp.StatusCode == http.StatusNotFound
	}

	s.metrics.Current.Record(latency, success, rejected)
}

func (s *Simulator) doExport(ctx context.Context) {
	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+"/api/appointments/current/pdf", nil)

	resp, err := s.client.Do(req)

	success := false
	rejected := false
	if err == nil {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		success = resp.StatusCode == http.StatusOK
		rejected = resp.StatusCode == http.StatusNotFound
	}

	s.metrics.Export.Record(time.Since(start), success, rejected)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Distinct appointment ids: %d (duplicates: %d)\n", len(s.issued), atomic.LoadInt64(&s.dupes))
	fmt.Println()

	printOperationReport("Booking", "Rejected", &s.metrics.Booking)
	printOperationReport("Current", "Empty", &s.metrics.Current)
	printOperationReport("Export", "Empty", &s.metrics.Export)
}

func printOperationReport(name, rejectedLabel string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	rejected := atomic.LoadInt64(&om.Rejected)
	errs := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if rejected > 0 {
		fmt.Printf("  %s: %d (%.1f%%)\n", rejectedLabel, rejected, float64(rejected)/float64(total)*100)
	}
	if errs > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errs, float64(errs)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
