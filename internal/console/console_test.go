package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegangsta/zcommand/internal/markup"
	"github.com/codegangsta/zcommand/internal/prefs"
	"github.com/codegangsta/zcommand/internal/zcommand"
)

type fakeServer struct {
	mu        sync.Mutex
	commands  []string
	forwarded []string
	down      bool
}

func (s *fakeServer) Command(ctx context.Context, command string) (*zcommand.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, command)
	if s.down {
		return nil, errors.New("connection refused")
	}
	return &zcommand.Result{Msg: "Changed to " + strings.TrimPrefix(command, "/") + " mode!"}, nil
}

func (s *fakeServer) SendMessage(ctx context.Context, to, content string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return 0, errors.New("connection refused")
	}
	s.forwarded = append(s.forwarded, content)
	return int64(len(s.forwarded)), nil
}

func newTestConsole(settings *prefs.Store) (*Console, *fakeServer, *bytes.Buffer) {
	server := &fakeServer{}
	out := &bytes.Buffer{}
	c := New(server, server, Options{
		ServerURL: "http://127.0.0.1:9991",
		ComposeTo: "hamlet@example.com",
		Settings:  settings,
		Out:       out,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	c.termWidth = func() int { return 120 }
	return c, server, out
}

func TestHandleNightModeAndUndo(t *testing.T) {
	settings := prefs.NewStore("", nil)
	c, server, out := newTestConsole(settings)

	assert.False(t, c.Handle(context.Background(), "/night"))
	c.Wait()

	assert.Equal(t, "dark", c.renderer.Style())
	assert.True(t, settings.Get(settingsKey).NightMode)
	assert.Contains(t, out.String(), "Night mode")
	assert.Contains(t, out.String(), "/undo → Day")

	c.Handle(context.Background(), "/undo")
	c.Wait()

	assert.Equal(t, []string{"/night", "/day"}, server.commands)
	assert.Equal(t, "light", c.renderer.Style())
	assert.False(t, settings.Get(settingsKey).NightMode)

	c.Handle(context.Background(), "/undo")
	assert.Contains(t, out.String(), "Nothing to undo")
}

func TestHandleLayoutWidth(t *testing.T) {
	c, _, _ := newTestConsole(nil)

	c.Handle(context.Background(), "/fluid-width")
	c.Wait()
	assert.Equal(t, 120, c.renderer.Width())

	c.Handle(context.Background(), "/fixed-width")
	c.Wait()
	assert.Equal(t, markup.FixedWidth, c.renderer.Width())
}

func TestHandleSettingsAndForwarding(t *testing.T) {
	c, server, out := newTestConsole(nil)

	c.Handle(context.Background(), "/settings")
	c.Handle(context.Background(), "lunch?")
	c.Wait()

	assert.Empty(t, server.commands)
	assert.Equal(t, []string{"lunch?"}, server.forwarded)
	assert.Contains(t, out.String(), "→ http://127.0.0.1:9991/#settings/your-account")
	assert.Contains(t, out.String(), "sent #1")
}

func TestHandleServerDown(t *testing.T) {
	c, server, out := newTestConsole(nil)
	server.down = true

	c.Handle(context.Background(), "/ping")
	c.Wait()
	c.Handle(context.Background(), "hello")

	assert.Contains(t, out.String(), "server did not respond")
	assert.Contains(t, out.String(), "Message not sent")
}

func TestHandleQuit(t *testing.T) {
	c, _, _ := newTestConsole(nil)

	assert.True(t, c.Handle(context.Background(), "/quit"))
	assert.True(t, c.Handle(context.Background(), " /exit "))
	assert.False(t, c.Handle(context.Background(), "   "))
}

func TestRestoresSavedSettings(t *testing.T) {
	settings := prefs.NewStore("", nil)
	settings.SetNightMode(settingsKey, true)
	settings.SetFluidWidth(settingsKey, true)

	server := &fakeServer{}
	c := New(server, server, Options{Settings: settings, Out: io.Discard})
	require.NotNil(t, c)

	assert.Equal(t, "dark", c.renderer.Style())
	assert.Positive(t, c.renderer.Width())
}
