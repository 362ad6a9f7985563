// Copyright 2025 The Hookfetch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// maxPayloadBytes bounds the body of a single delivery
const maxPayloadBytes = 5 << 20

// Server receives Hookdeck webhook deliveries
type Server struct {
	addr          string
	port          int
	webhookSecret string
	handler       Handler
	server        *http.Server
	rateLimiter   *RateLimiter
}

// RateLimiter provides per-source rate limiting
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*bucket
	limit    int
	window   time.Duration
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// NewServer creates a new webhook server. An empty webhookSecret disables
// signature verification. A nil handler only logs deliveries.
func NewServer(addr string, port int, webhookSecret string, handler Handler) *Server {
	return &Server{
		addr:          addr,
		port:          port,
		webhookSecret: webhookSecret,
		handler:       handler,
		rateLimiter:   NewRateLimiter(10, time.Second), // 10 requests per second per source
	}
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*bucket),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.limiters[key]
	if !exists {
		b = &bucket{
			tokens:    rl.limit,
			lastReset: time.Now(),
		}
		rl.limiters[key] = b
	}

	// Reset bucket if window has passed
	if time.Since(b.lastReset) >= rl.window {
		b.tokens = rl.limit
		b.lastReset = time.Now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/", s.handleWebhook)
	return mux
}

// Start starts the webhook server and blocks until ctx is cancelled or the
// listener fails. Request contexts inherit the logger of ctx.
func (s *Server) Start(ctx context.Context) error {
	logger := log.FromContext(ctx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.addr, s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if s.webhookSecret == "" {
		logger.Info("No webhook secret configured, skipping signature verification")
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting webhook server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.FromContext(ctx).Info("Shutting down webhook server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleWebhook accepts a delivery on any path
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	traceID := r.Header.Get(TraceIDHeader)
	if traceID == "" {
		traceID = uuid.New().String()
	}
	w.Header().Set(TraceIDHeader, traceID)

	source := r.Header.Get(SourceNameHeader)
	logger := log.FromContext(r.Context()).WithValues("traceID", traceID, "source", source, "path", r.URL.Path)

	// Only accept POST requests
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "method not allowed"})
		return
	}

	// Rate limiting check
	key := source
	if key == "" {
		key = remoteHost(r.RemoteAddr)
	}
	if !s.rateLimiter.Allow(key) {
		logger.Info("Rate limit exceeded", "key", key)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "too many requests"})
		return
	}

	// Read body
	defer r.Body.Close()
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		logger.Error(err, "Failed to read request body")
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "could not get request body data"})
		return
	}

	// Validate signature
	if s.webhookSecret != "" && !ValidateSignature(payload, r.Header, s.webhookSecret) {
		logger.Info("Invalid webhook signature")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "invalid payload"})
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		logger.Error(err, "Failed to parse JSON payload")
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid JSON"})
		return
	}
	logger.Info("Webhook received", "eventID", r.Header.Get(EventIDHeader), "payload", pretty.String())

	if s.handler != nil {
		delivery := &Delivery{
			TraceID: traceID,
			Source:  source,
			EventID: r.Header.Get(EventIDHeader),
			Path:    r.URL.Path,
			Payload: payload,
		}
		if err := s.handler(delivery); err != nil {
			logger.Error(err, "Failed to handle delivery")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "failed to handle delivery"})
			return
		}
	}

	writeJSON(w, http.StatusOK, acceptedResponse{Status: "ACCEPTED"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// remoteHost strips the port from a remote address
func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
