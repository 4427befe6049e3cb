// Package console is an interactive terminal frontend for the dispatcher
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/codegangsta/zcommand/internal/markup"
	"github.com/codegangsta/zcommand/internal/prefs"
	"github.com/codegangsta/zcommand/internal/zcommand"
	"github.com/codegangsta/zcommand/internal/zulip"
)

// settingsKey is the prefs key the console stores its display settings under
const settingsKey = "console"

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Forwarder posts text the dispatcher did not consume as a chat message
type Forwarder interface {
	SendMessage(ctx context.Context, to, content string) (int64, error)
}

// Options configures a Console
type Options struct {
	ServerURL string
	ComposeTo string
	Settings  *prefs.Store
	Out       io.Writer // defaults to stdout
	Logger    *slog.Logger
}

// Console reads lines from the terminal and dispatches them
type Console struct {
	dispatcher *zcommand.Dispatcher
	forward    Forwarder
	renderer   *markup.Terminal
	settings   *prefs.Store
	serverURL  string
	composeTo  string
	termWidth  func() int
	logger     *slog.Logger

	outMu sync.Mutex
	out   io.Writer

	undoMu sync.Mutex
	undo   *zcommand.Feedback
}

// New creates a console frontend
func New(client zcommand.Client, forward Forwarder, opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	settings := opts.Settings
	if settings == nil {
		settings = prefs.NewStore("", logger)
	}

	c := &Console{
		forward:   forward,
		renderer:  markup.NewTerminal(),
		settings:  settings,
		serverURL: opts.ServerURL,
		composeTo: opts.ComposeTo,
		termWidth: stdoutWidth,
		logger:    logger,
		out:       out,
	}
	c.dispatcher = zcommand.New(client, zcommand.UI{
		Theme:     c,
		Layout:    c,
		Navigator: c,
		Notifier:  c,
		Feedback:  c,
		Renderer:  c.renderer,
	}, logger)

	// Restore the display settings from the last run
	saved := settings.Get(settingsKey)
	c.renderer.SetNight(saved.NightMode)
	if saved.FluidWidth {
		c.renderer.SetWidth(c.termWidth())
	}
	return c
}

// Run reads and handles lines until /quit, EOF or Ctrl-C
func (c *Console) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	c.println(hintStyle.Render("Type /quit to leave, /undo to revert the last change."))

	for ctx.Err() == nil {
		text, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(text) != "" {
			line.AppendHistory(text)
		}
		if c.Handle(ctx, text) {
			break
		}
	}

	c.dispatcher.Wait()
	return nil
}

// Handle processes one line and reports whether the user asked to quit
func (c *Console) Handle(ctx context.Context, text string) (quit bool) {
	switch strings.TrimSpace(text) {
	case "":
		return false
	case "/quit", "/exit":
		return true
	case "/undo":
		c.runUndo()
		return false
	}

	if c.dispatcher.Process(ctx, text) {
		return false
	}

	id, err := c.forward.SendMessage(ctx, c.composeTo, text)
	if err != nil {
		c.logger.Error("failed to send message", "error", err)
		c.TellUser("Message not sent: server did not respond")
		return false
	}
	c.println(hintStyle.Render(fmt.Sprintf("sent #%d", id)))
	return false
}

// Wait blocks until in-flight commands have completed
func (c *Console) Wait() {
	c.dispatcher.Wait()
}

func (c *Console) runUndo() {
	c.undoMu.Lock()
	fb := c.undo
	c.undo = nil
	c.undoMu.Unlock()

	if fb == nil {
		c.TellUser("Nothing to undo")
		return
	}
	fb.Undo()
}

// TellUser prints an error-styled message
func (c *Console) TellUser(msg string) {
	c.println(errorStyle.Render(msg))
}

// Show prints a confirmation box and remembers its undo action
func (c *Console) Show(fb zcommand.Feedback) {
	c.undoMu.Lock()
	c.undo = &fb
	c.undoMu.Unlock()

	body := titleStyle.Render(fb.Title)
	if fb.Body != "" {
		body += "\n" + fb.Body
	}
	body += "\n" + hintStyle.Render("/undo → "+fb.UndoLabel)
	c.println(boxStyle.Render(body))
}

func (c *Console) EnableNightMode() {
	c.renderer.SetNight(true)
	c.settings.SetNightMode(settingsKey, true)
}

func (c *Console) DisableNightMode() {
	c.renderer.SetNight(false)
	c.settings.SetNightMode(settingsKey, false)
}

func (c *Console) SetLayoutWidth(fluid bool) {
	if fluid {
		c.renderer.SetWidth(c.termWidth())
	} else {
		c.renderer.SetWidth(markup.FixedWidth)
	}
	c.settings.SetFluidWidth(settingsKey, fluid)
}

func (c *Console) Navigate(location string) {
	c.println("→ " + zulip.LocationURL(c.serverURL, location))
}

func (c *Console) println(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintln(c.out, s)
}

// stdoutWidth is the terminal width, or the fixed width when stdout is not a terminal
func stdoutWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return markup.FixedWidth
	}
	return w
}
