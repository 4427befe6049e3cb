package zcommand

import (
	"fmt"
	"slices"
	"strings"
)

const themeCommand = "/theme"

var (
	dayCommands   = []string{"/day", "/light"}
	nightCommands = []string{"/night", "/dark"}
)

// ThemeError is a /theme invocation naming no theme or an unknown one
type ThemeError struct {
	Name    string // theme as typed, empty when Missing
	Missing bool
}

func (e *ThemeError) Error() string {
	issue := "No theme specified"
	if !e.Missing {
		issue = fmt.Sprintf("Theme '%s' does not exist", e.Name)
	}
	return issue + " (valid themes: " + strings.Join(ValidThemes(), ", ") + ")"
}

// ValidThemes lists the theme names /theme accepts: day aliases, then night aliases
func ValidThemes() []string {
	themes := make([]string, 0, len(dayCommands)+len(nightCommands))
	for _, c := range slices.Concat(dayCommands, nightCommands) {
		themes = append(themes, strings.TrimPrefix(c, "/"))
	}
	return themes
}

// ParseTheme resolves "/theme <name>" into its direct command ("/night",
// "/light", ...). content must start with "/theme" and be trimmed.
//
// The name is everything after the first space following "/theme", so
// "/themenight" names no theme at all.
func ParseTheme(content string) (string, error) {
	nameIdx := 0
	if len(content) >= len(themeCommand) {
		if i := strings.IndexByte(content[len(themeCommand):], ' '); i >= 0 {
			nameIdx = len(themeCommand) + i + 1
		}
	}

	direct := "/" + content[nameIdx:]
	if slices.Contains(nightCommands, direct) || slices.Contains(dayCommands, direct) {
		return direct, nil
	}

	if nameIdx == 0 {
		return "", &ThemeError{Missing: true}
	}
	return "", &ThemeError{Name: content[nameIdx:]}
}
