// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/imu_display/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const (
	wsWriteTimeout = 5 * time.Second
	wsClientBuffer = 16

	webReadHeaderTimeout = 5 * time.Second
	webShutdownTimeout   = 5 * time.Second
)

// Hub keeps the latest reading for the JSON API and streams readings to
// websocket clients. Slow clients miss readings rather than block publishing.
type Hub struct {
	mu       sync.RWMutex
	last     Reading
	haveLast bool
	clients  map[chan Reading]struct{}

	reset func()
}

// NewHub creates a hub. reset is called for POST /api/reset; nil disables it.
func NewHub(reset func()) *Hub {
	return &Hub{
		clients: make(map[chan Reading]struct{}),
		reset:   reset,
	}
}

func (h *Hub) Publish(r Reading) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = r
	h.haveLast = true
	for ch := range h.clients {
		select {
		case ch <- r:
		default:
		}
	}
	return nil
}

// Last returns the latest reading, if any.
func (h *Hub) Last() (Reading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.haveLast
}

func (h *Hub) subscribe() chan Reading {
	ch := make(chan Reading, wsClientBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = struct{}{}
	if h.haveLast {
		ch <- h.last
	}
	return ch
}

func (h *Hub) unsubscribe(ch chan Reading) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
}

// Handler serves the web API:
//
//	GET  /api/orientation  latest reading as JSON
//	POST /api/reset        request a zero reset
//	GET  /ws               websocket stream of readings
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orientation", h.handleOrientation)
	mux.HandleFunc("/api/reset", h.handleReset)
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

func (h *Hub) handleOrientation(w http.ResponseWriter, r *http.Request) {
	last, ok := h.Last()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(last); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (h *Hub) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.reset == nil {
		http.Error(w, "reset not available", http.StatusNotImplemented)
		return
	}
	log.Printf("web: zero reset requested from %s", r.RemoteAddr)
	h.reset()
	w.WriteHeader(http.StatusAccepted)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so no reading published
	// after the client connected is missed.
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket read error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case reading := <-ch:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(reading); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

// ServeWeb serves the hub on the given port until ctx is cancelled.
func ServeWeb(ctx context.Context, port int, h *Hub) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("web: listen: %w", err)
	}
	log.Printf("web: server listening on %s", ln.Addr())
	return serveWeb(ctx, ln, h)
}

func serveWeb(ctx context.Context, ln net.Listener, h *Hub) error {
	server := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: webReadHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(ln)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("web: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), webShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: serve: %w", err)
	}
	log.Printf("web: server stopped")
	return nil
}

// RunWeb serves readings received over MQTT, for when the session runs on
// another machine. POST /api/reset is forwarded to the reset topic. It
// returns once ctx is cancelled.
func RunWeb(ctx context.Context, cfg *config.Config) error {
	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID+"-web")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	hub := NewHub(func() {
		if cfg.TopicReset == "" {
			return
		}
		if token := client.Publish(cfg.TopicReset, 0, false, "reset"); token.Wait() && token.Error() != nil {
			log.Printf("web: reset publish error: %v", token.Error())
		}
	})
	if err := SubscribeReadings(client, cfg.TopicOrientation, hub); err != nil {
		return err
	}

	port := cfg.WebServerPort
	if port == 0 {
		port = 8080
	}
	return ServeWeb(ctx, port, hub)
}
