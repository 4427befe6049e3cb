// Package zcommand dispatches the small set of slash commands whose whole
// behavior is "tell the server, then react to its acknowledgement".
//
// Richer interactive commands (polls and the like) are handled elsewhere.
package zcommand

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// SettingsLocation is where /settings navigates to
const SettingsLocation = "settings/your-account"

// Result is the server's acknowledgement of a command
type Result struct {
	Msg string `json:"msg"` // lightweight markup
}

// Client sends a command to the server
type Client interface {
	Command(ctx context.Context, command string) (*Result, error)
}

// Theme switches between day and night mode
type Theme interface {
	EnableNightMode()
	DisableNightMode()
}

// Layout applies the layout width after a fluid/fixed switch
type Layout interface {
	SetLayoutWidth(fluid bool)
}

// Navigator moves the client to an internal location
type Navigator interface {
	Navigate(location string)
}

// Notifier shows a plain-text message, replacing whatever was shown before
type Notifier interface {
	TellUser(msg string)
}

// Renderer turns lightweight markup into display markup
type Renderer interface {
	Render(markup string) string
}

// Feedback is a dismissible confirmation with an undo action
type Feedback struct {
	Title     string
	Body      string // already rendered
	UndoLabel string
	Undo      func()
}

// FeedbackWidget displays confirmations
type FeedbackWidget interface {
	Show(fb Feedback)
}

// UI bundles the client-side collaborators the dispatcher calls into
type UI struct {
	Theme     Theme
	Layout    Layout
	Navigator Navigator
	Notifier  Notifier
	Feedback  FeedbackWidget
	Renderer  Renderer
}

// Dispatcher recognizes zcommands and runs them against the server
type Dispatcher struct {
	client Client
	ui     UI
	logger *slog.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// New creates a dispatcher
func New(client Client, ui UI, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		client: client,
		ui:     ui,
		logger: logger,
		now:    time.Now,
	}
}

// Process handles text typed by the user. It returns true when the text was
// a zcommand and must not be sent as a chat message.
//
// Process never blocks on the server: requests run in the background and
// are not cancelled by ctx.
func (d *Dispatcher) Process(ctx context.Context, text string) bool {
	content := strings.TrimSpace(text)

	r := lookup(content)
	if r == nil {
		return false
	}

	d.logger.Debug("zcommand matched", "command", content, "route", r.name)
	r.run(context.WithoutCancel(ctx), d, content)
	return true
}

// Send issues a bare command in the background. Failures are reported to the
// user; the server's reply is otherwise ignored.
func (d *Dispatcher) Send(ctx context.Context, command string) {
	d.spawn(ctx, func(ctx context.Context) {
		d.send(ctx, command)
	})
}

// Wait blocks until every request started so far has completed
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// spawn runs fn on its own goroutine with a context detached from cancellation
func (d *Dispatcher) spawn(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn(ctx)
	}()
}

// send performs one round trip. ok is false if the server did not respond,
// in which case the user has already been told.
func (d *Dispatcher) send(ctx context.Context, command string) (res *Result, ok bool) {
	res, err := d.client.Command(ctx, command)
	if err != nil {
		d.logger.Warn("zcommand failed", "command", command, "error", err)
		d.tellUser("server did not respond")
		return nil, false
	}
	if res == nil {
		res = &Result{}
	}
	return res, true
}

func (d *Dispatcher) tellUser(msg string) {
	if d.ui.Notifier != nil {
		d.ui.Notifier.TellUser(msg)
	}
}

// render renders the server message for a feedback body
func (d *Dispatcher) render(msg string) string {
	if d.ui.Renderer == nil {
		return strings.TrimSpace(msg)
	}
	return strings.TrimSpace(d.ui.Renderer.Render(msg))
}
