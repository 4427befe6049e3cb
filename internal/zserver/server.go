// Package zserver is a reference implementation of the server side of
// zcommands, used for local development and end-to-end tests.
package zserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/codegangsta/zcommand/internal/prefs"
	"github.com/codegangsta/zcommand/internal/zulip"
)

// anonymous is the settings key for requests without basic auth
const anonymous = "anonymous"

// Message is a chat message received on the messages endpoint
type Message struct {
	ID      int64
	Sender  string
	To      string
	Content string
	Sent    time.Time
}

// Server answers zcommands and records chat messages
type Server struct {
	settings *prefs.Store
	logger   *slog.Logger
	mux      *http.ServeMux

	listener net.Listener
	server   *http.Server
	wg       sync.WaitGroup

	mu       sync.Mutex
	messages []Message
}

// New creates a server that keeps per-user settings in settings
func New(settings *prefs.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		settings: settings,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc(zulip.CommandPath, s.handleCommand)
	s.mux.HandleFunc(zulip.MessagesPath, s.handleMessage)
	return s
}

// ServeHTTP lets the server be mounted on any listener (httptest included)
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start listens on addr and serves in the background
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("creating listener: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error("zcommand server error", "error", err)
		}
	}()
	s.logger.Info("zcommand server started", "addr", listener.Addr().String())
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.server.Shutdown(ctx)
	s.wg.Wait()
}

// Addr returns the listening address, empty before Start
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Messages returns a copy of every message received so far
func (s *Server) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	user := requestUser(r)
	command := r.PostForm.Get("command")

	msg, err := s.execute(user, command)
	if err != nil {
		s.logger.Info("zcommand rejected", "user", user, "command", command, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Debug("zcommand handled", "user", user, "command", command)
	writeJSON(w, http.StatusOK, zulip.Response{Result: "success", Msg: msg})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	content := r.PostForm.Get("content")
	if strings.TrimSpace(content) == "" {
		writeError(w, http.StatusBadRequest, "Message must not be empty")
		return
	}

	s.mu.Lock()
	m := Message{
		ID:      int64(len(s.messages) + 1),
		Sender:  requestUser(r),
		To:      r.PostForm.Get("to"),
		Content: content,
		Sent:    time.Now(),
	}
	s.messages = append(s.messages, m)
	s.mu.Unlock()

	s.logger.Info("message received", "id", m.ID, "sender", m.Sender, "to", m.To)
	writeJSON(w, http.StatusOK, zulip.Response{Result: "success", ID: m.ID})
}

func requestUser(r *http.Request) string {
	if user, _, ok := r.BasicAuth(); ok && user != "" {
		return user
	}
	return anonymous
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, zulip.Response{Result: "error", Msg: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
