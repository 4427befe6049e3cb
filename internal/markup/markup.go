// Package markup renders the lightweight markup servers send in command
// acknowledgements
package markup

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// HTML renders Markdown to the HTML subset Telegram accepts
type HTML struct {
	policy *bluemonday.Policy
}

// NewHTML creates an HTML renderer
func NewHTML() *HTML {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("b", "strong", "i", "em", "u", "s", "del", "code", "pre")
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto")
	policy.AllowAttrs("href").OnElements("a")
	return &HTML{policy: policy}
}

// Render converts md to sanitized HTML. Block wrappers such as <p> are
// dropped and their text kept.
func (h *HTML) Render(md string) string {
	// parsers are stateful, one per call
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.SkipHTML})
	out := markdown.ToHTML([]byte(md), p, renderer)
	return strings.TrimSpace(h.policy.Sanitize(string(out)))
}

// FixedWidth is the wrap width of the fixed layout
const FixedWidth = 80

// Terminal renders Markdown for an ANSI terminal
type Terminal struct {
	mu    sync.Mutex
	style string
	width int
}

// NewTerminal creates a terminal renderer in day style at the fixed width
func NewTerminal() *Terminal {
	return &Terminal{style: "light", width: FixedWidth}
}

// SetNight switches between the dark and light styles
func (t *Terminal) SetNight(night bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if night {
		t.style = "dark"
	} else {
		t.style = "light"
	}
}

// SetWidth sets the wrap width
func (t *Terminal) SetWidth(width int) {
	if width <= 0 {
		width = FixedWidth
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width = width
}

// Style returns the current glamour style name
func (t *Terminal) Style() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.style
}

// Width returns the current wrap width
func (t *Terminal) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

// Render converts md for the terminal, falling back to the raw text
func (t *Terminal) Render(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.Style()),
		glamour.WithWordWrap(t.Width()),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
