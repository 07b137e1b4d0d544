// Package main runs the token dashboard backend: the simulated feed,
// the reconciliation store and an HTTP/WebSocket surface that serves
// the derived token lists to browser clients.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"token-pulse/internal/domain"
	"token-pulse/internal/feed"
	"token-pulse/internal/flash"
	"token-pulse/internal/observability"
	"token-pulse/internal/session"
	"token-pulse/internal/store"
)

// Server holds the running components and request-serving state.
type Server struct {
	store        *store.Store
	session      *session.Session
	pushInterval time.Duration
	logger       *log.Logger

	mu        sync.Mutex
	startedAt time.Time
	clients   int
	refreshes int
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from any origin in dev
	},
}

func main() {
	loadEnvFile()

	addr := flag.String("addr", envOr("PULSE_ADDR", ":8080"), "HTTP listen address")
	flashTTL := flag.Duration("flash-ttl", 600*time.Millisecond, "How long price flashes stay lit")
	priceInterval := flag.Duration("price-interval", 800*time.Millisecond, "Simulated price batch interval")
	newTokenInterval := flag.Duration("new-token-interval", 7*time.Second, "Simulated new listing interval")
	migrationInterval := flag.Duration("migration-interval", 18*time.Second, "Simulated migration interval")
	fetchLatency := flag.Duration("fetch-latency", 200*time.Millisecond, "Simulated bootstrap fetch latency")
	failRate := flag.Float64("fail-rate", 0.05, "Simulated bootstrap failure probability")
	pushInterval := flag.Duration("push-interval", time.Second, "WebSocket push interval")
	seed := flag.Int64("seed", 0, "Random seed for the simulated feed (0 = clock)")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	st := store.New()
	flashMgr := flash.NewManager(*flashTTL, st.ClearFlash)

	client := feed.NewSimClient(feed.SimClientConfig{
		Latency:  *fetchLatency,
		FailRate: *failRate,
		Seed:     *seed,
	})
	simFeed := feed.NewSimFeed(feed.SimConfig{
		PriceInterval:     *priceInterval,
		NewTokenInterval:  *newTokenInterval,
		MigrationInterval: *migrationInterval,
		Seed:              *seed,
	}, log.New(os.Stdout, "[feed] ", log.LstdFlags))

	sess := session.New(session.Options{
		Client: client,
		Feed:   simFeed,
		Store:  st,
		Flash:  flashMgr,
		Logger: log.New(os.Stdout, "[session] ", log.LstdFlags),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sess.Load(ctx); err != nil {
		// The error is surfaced in the store's loading state; clients
		// can retry through /api/refresh.
		logger.Printf("Initial load failed: %v", err)
	}

	server := &Server{
		store:        st,
		session:      sess,
		pushInterval: *pushInterval,
		logger:       logger,
		startedAt:    time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/api/tokens", server.handleTokens)
	mux.HandleFunc("/api/token", server.handleTokenDetail)
	mux.HandleFunc("/api/categories", server.handleCategories)
	mux.HandleFunc("/api/refresh", server.handleRefresh)
	mux.HandleFunc("/ws", server.handleWS)

	httpServer := &http.Server{Addr: *addr, Handler: mux}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	sess.Close()
	logger.Println("Shutdown complete")
}

// visiblePayload is the JSON frame pushed to dashboard clients and
// returned by /api/tokens.
type visiblePayload struct {
	Category  domain.Category                  `json:"category"`
	Tokens    []domain.Token                   `json:"tokens"`
	Flash     map[string]domain.FlashDirection `json:"flash"`
	Loading   domain.LoadingState              `json:"loading"`
	Connected bool                             `json:"connected"`
}

func (s *Server) visible() visiblePayload {
	return visiblePayload{
		Category:  s.store.ActiveCategory(),
		Tokens:    s.store.VisibleTokens(),
		Flash:     s.store.FlashAll(),
		Loading:   s.store.Loading(),
		Connected: s.store.Connected(),
	}
}

// handleTokens applies view configuration from query parameters (these
// are the user actions of the dashboard) and returns the derived list.
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	s.applyViewParams(r)
	writeJSON(w, s.visible())
}

// applyViewParams feeds category/sort/filter query parameters into the
// store. Absent parameters leave the current configuration untouched.
func (s *Server) applyViewParams(r *http.Request) {
	q := r.URL.Query()

	if v := q.Get("category"); v != "" {
		s.store.SetActiveCategory(domain.Category(v))
	}

	if v := q.Get("sort"); v != "" {
		field := domain.SortField(v)
		if field.IsValid() {
			dir := domain.SortDesc
			if q.Get("dir") == string(domain.SortAsc) {
				dir = domain.SortAsc
			}
			s.store.SetSort(domain.SortConfig{Field: field, Direction: dir})
		}
	}

	if hasFilterParams(q) {
		var f domain.FilterConfig
		f.MinMarketCap = parseFloat(q.Get("minMarketCap"))
		f.MaxMarketCap = parseFloat(q.Get("maxMarketCap"))
		f.MinHolders = int(parseFloat(q.Get("minHolders")))
		f.MinVolume = parseFloat(q.Get("minVolume"))
		f.HideInsiders = q.Get("hideInsiders") == "true"
		f.HideRugged = q.Get("hideRugged") == "true"
		s.store.SetFilter(f)
	}
}

func hasFilterParams(q url.Values) bool {
	for _, key := range []string{"minMarketCap", "maxMarketCap", "minHolders", "minVolume", "hideInsiders", "hideRugged"} {
		if q.Has(key) {
			return true
		}
	}
	return false
}

func parseFloat(v string) float64 {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// handleTokenDetail selects a token and returns its detail record.
func (s *Server) handleTokenDetail(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	token, err := s.session.SelectToken(r.Context(), id)
	if err != nil {
		http.Error(w, "token not found", http.StatusNotFound)
		return
	}
	writeJSON(w, token)
}

// handleCategories returns the category table for tab rendering.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, domain.Categories())
}

// handleRefresh triggers a re-fetch. A session that never loaded
// retries the initial load instead.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := s.session.Refresh(r.Context())
	if err == session.ErrNotLoaded {
		err = s.session.Load(r.Context())
	}
	if err != nil {
		s.logger.Printf("Refresh failed: %v", err)
	}

	s.mu.Lock()
	s.refreshes++
	s.mu.Unlock()

	writeJSON(w, s.store.Loading())
}

// handleWS streams the visible token list to a dashboard client: one
// frame immediately, then one per push interval until the client goes
// away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	s.trackClient(1)
	defer s.trackClient(-1)

	if err := conn.WriteJSON(s.visible()); err != nil {
		return
	}

	ticker := time.NewTicker(s.pushInterval)
	defer ticker.Stop()

	// Drain client frames so closes are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.visible()); err != nil {
				return
			}
		}
	}
}

func (s *Server) trackClient(delta int) {
	s.mu.Lock()
	s.clients += delta
	observability.UpdateDashboardClients(s.clients)
	s.mu.Unlock()
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status       string              `json:"status"`
	Uptime       string              `json:"uptime"`
	Connected    bool                `json:"connected"`
	NewPairs     int                 `json:"newPairs"`
	FinalStretch int                 `json:"finalStretch"`
	Migrated     int                 `json:"migrated"`
	Clients      int                 `json:"clients"`
	Refreshes    int                 `json:"refreshes"`
	Loading      domain.LoadingState `json:"loading"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	newPairs, finalStretch, migrated := s.store.Counts()

	s.mu.Lock()
	clients := s.clients
	refreshes := s.refreshes
	uptime := time.Since(s.startedAt).String()
	s.mu.Unlock()

	writeJSON(w, StatusResponse{
		Status:       "running",
		Uptime:       uptime,
		Connected:    s.store.Connected(),
		NewPairs:     newPairs,
		FinalStretch: finalStretch,
		Migrated:     migrated,
		Clients:      clients,
		Refreshes:    refreshes,
		Loading:      s.store.Loading(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
