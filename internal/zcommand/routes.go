package zcommand

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// route binds a matcher to a handler. Routes are tried in order and the
// first match wins.
type route struct {
	name  string
	match func(content string) bool
	run   func(ctx context.Context, d *Dispatcher, content string)
}

var routes = []route{
	{name: "ping", match: exact("/ping"), run: runPing},
	{name: "day", match: exact(dayCommands...), run: runMode(&dayMode)},
	{name: "night", match: exact(nightCommands...), run: runMode(&nightMode)},
	{name: "theme", match: prefix(themeCommand), run: runTheme},
	{name: "fluid-width", match: exact("/fluid-width"), run: runMode(&fluidMode)},
	{name: "fixed-width", match: exact("/fixed-width"), run: runMode(&fixedMode)},
	{name: "settings", match: exact("/settings"), run: runSettings},
}

func lookup(content string) *route {
	for i := range routes {
		if routes[i].match(content) {
			return &routes[i]
		}
	}
	return nil
}

func exact(commands ...string) func(string) bool {
	return func(content string) bool {
		return slices.Contains(commands, content)
	}
}

func prefix(p string) func(string) bool {
	return func(content string) bool {
		return strings.HasPrefix(content, p)
	}
}

func runPing(ctx context.Context, d *Dispatcher, content string) {
	start := d.now()
	d.spawn(ctx, func(ctx context.Context) {
		if _, ok := d.send(ctx, content); !ok {
			return
		}
		elapsed := d.now().Sub(start).Round(time.Millisecond)
		d.tellUser(fmt.Sprintf("ping time: %dms", elapsed.Milliseconds()))
	})
}

func runMode(m *mode) func(ctx context.Context, d *Dispatcher, content string) {
	return func(ctx context.Context, d *Dispatcher, _ string) {
		d.enter(ctx, m)
	}
}

func runTheme(ctx context.Context, d *Dispatcher, content string) {
	direct, err := ParseTheme(content)
	if err != nil {
		msg := err.Error()
		// There is no direct way to report asynchronously, so a ping
		// round trip carries the message.
		d.spawn(ctx, func(ctx context.Context) {
			if _, ok := d.send(ctx, "/ping"); ok {
				d.tellUser(msg)
			}
		})
		return
	}

	if slices.Contains(nightCommands, direct) {
		d.enter(ctx, &nightMode)
		return
	}
	d.enter(ctx, &dayMode)
}

func runSettings(_ context.Context, d *Dispatcher, _ string) {
	if d.ui.Navigator != nil {
		d.ui.Navigator.Navigate(SettingsLocation)
	}
}
