// Command gosession-smoke drives repeated OTP login cycles through a Manager
// to sanity-check the full flow against a stub or real backend.
//
// Configuration comes from flags, with BASE_URL (optionally via a .env file)
// selecting a real backend. Without one an in-process stub is used, which
// accepts the fixed OTP 123456.
//
// Run:
//
//	go run ./cmd/gosession-smoke -cycles 1000 -concurrency 16
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"

	goSession "github.com/saidineshgoexperts/goSession"
	"github.com/saidineshgoexperts/goSession/fingerprint"
)

const stubOTP = "123456"

func main() {
	var (
		cycles      = flag.Int("cycles", 100, "number of login cycles to run")
		concurrency = flag.Int("concurrency", 8, "number of concurrent workers")
		mobile      = flag.String("mobile", "9876543210", "mobile number used for the OTP flow")
		otp         = flag.String("otp", stubOTP, "OTP code submitted on verify")
		envFile     = flag.String("env-file", "", "optional .env file providing BASE_URL")
	)
	flag.Parse()

	if *cycles <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "cycles and concurrency must be > 0")
		os.Exit(2)
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
			os.Exit(1)
		}
	} else {
		// Best-effort default load; a missing .env is fine.
		_ = godotenv.Load()
	}

	baseURL := os.Getenv("BASE_URL")
	var cleanup func()
	if baseURL == "" {
		srv := httptest.NewServer(stubHandler())
		baseURL = srv.URL
		cleanup = srv.Close
		fmt.Printf("using stub backend at %s\n", baseURL)
	} else {
		cleanup = func() {}
		fmt.Printf("using backend at %s\n", baseURL)
	}
	defer cleanup()

	ctx := context.Background()

	var (
		okCount   atomic.Uint64
		failCount atomic.Uint64
		mu        sync.Mutex
		latencies []time.Duration
	)

	start := time.Now()
	perWorker := *cycles / *concurrency
	if perWorker == 0 {
		perWorker = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			for i := 0; i < perWorker; i++ {
				elapsed, err := runCycle(ctx, baseURL, *mobile, *otp, worker)
				if err != nil {
					failCount.Add(1)
					fmt.Fprintf(os.Stderr, "cycle failed: %v\n", err)
					continue
				}
				okCount.Add(1)
				mu.Lock()
				latencies = append(latencies, elapsed)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	total := time.Since(start)
	fmt.Printf("done in %s: %d ok, %d failed\n", total.Round(time.Millisecond), okCount.Load(), failCount.Load())
	printPercentiles(latencies)
}

// runCycle builds a fresh Manager and walks one full request → verify →
// profile → logout pass. Each cycle is a new Manager so the rate limiter
// never trips on its own traffic.
func runCycle(ctx context.Context, baseURL, mobile, otp string, worker int) (time.Duration, error) {
	manager, err := goSession.New().
		WithBaseURL(baseURL).
		WithFingerprint(fingerprint.Static{
			ID:  fmt.Sprintf("smoke-device-%d", worker),
			FCM: "smoke-fcm",
		}).
		Build()
	if err != nil {
		return 0, err
	}
	defer manager.Close()

	start := time.Now()

	if err := manager.RequestOTP(ctx, mobile); err != nil {
		return 0, fmt.Errorf("request otp: %w", err)
	}
	if err := manager.VerifyOTP(ctx, mobile, otp); err != nil {
		return 0, fmt.Errorf("verify otp: %w", err)
	}
	if !manager.IsAuthenticated() {
		return 0, fmt.Errorf("expected authenticated state after verify")
	}
	if _, err := manager.Profile(ctx); err != nil {
		return 0, fmt.Errorf("profile: %w", err)
	}
	if err := manager.Logout(ctx); err != nil {
		return 0, fmt.Errorf("logout: %w", err)
	}

	return time.Since(start), nil
}

func printPercentiles(latencies []time.Duration) {
	if len(latencies) == 0 {
		return
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	pct := func(p float64) time.Duration {
		idx := int(p * float64(len(latencies)-1))
		return latencies[idx]
	}
	fmt.Printf("latency p50=%s p90=%s p99=%s\n",
		pct(0.50).Round(time.Microsecond),
		pct(0.90).Round(time.Microsecond),
		pct(0.99).Round(time.Microsecond),
	)
}

func stubHandler() http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("POST /auth/sendWhatsAppOtp", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "message": "otp sent"})
	})
	mux.HandleFunc("POST /auth/verifywhatsappOTP", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OTP string `json:"otp"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.OTP != stubOTP {
			writeJSON(w, map[string]any{"success": false, "message": "invalid otp"})
			return
		}
		writeJSON(w, map[string]any{"success": true, "token": "smoke-token"})
	})
	mux.HandleFunc("GET /user/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{
			"success": true,
			"data":    map[string]string{"_id": "smoke-user", "name": "Smoke User", "mobile": "9876543210"},
		})
	})

	return mux
}
