package zcommand

import "context"

// mode is one side of a binary client setting the server acknowledges
type mode struct {
	command   string
	inverse   string
	title     string
	undoLabel string
	apply     func(ui UI)
}

var (
	dayMode = mode{
		command:   "/day",
		inverse:   "/night",
		title:     "Day mode",
		undoLabel: "Night",
		apply: func(ui UI) {
			if ui.Theme != nil {
				ui.Theme.DisableNightMode()
			}
		},
	}
	nightMode = mode{
		command:   "/night",
		inverse:   "/day",
		title:     "Night mode",
		undoLabel: "Day",
		apply: func(ui UI) {
			if ui.Theme != nil {
				ui.Theme.EnableNightMode()
			}
		},
	}
	fluidMode = mode{
		command:   "/fluid-width",
		inverse:   "/fixed-width",
		title:     "Fluid width mode",
		undoLabel: "Fixed width",
		apply: func(ui UI) {
			if ui.Layout != nil {
				ui.Layout.SetLayoutWidth(true)
			}
		},
	}
	fixedMode = mode{
		command:   "/fixed-width",
		inverse:   "/fluid-width",
		title:     "Fixed width mode",
		undoLabel: "Fluid width",
		apply: func(ui UI) {
			if ui.Layout != nil {
				ui.Layout.SetLayoutWidth(false)
			}
		},
	}
)

// modeFor returns the mode entered by command, or nil
func modeFor(command string) *mode {
	for _, m := range []*mode{&dayMode, &nightMode, &fluidMode, &fixedMode} {
		if m.command == command {
			return m
		}
	}
	return nil
}

// enter switches to m once the server acknowledges it, then offers an undo
func (d *Dispatcher) enter(ctx context.Context, m *mode) {
	d.spawn(ctx, func(ctx context.Context) {
		res, ok := d.send(ctx, m.command)
		if !ok {
			return
		}
		m.apply(d.ui)
		d.logger.Info("mode changed", "command", m.command)

		if d.ui.Feedback == nil {
			return
		}
		d.ui.Feedback.Show(Feedback{
			Title:     m.title,
			Body:      d.render(res.Msg),
			UndoLabel: m.undoLabel,
			Undo: func() {
				d.revert(ctx, m)
			},
		})
	})
}

// revert sends the inverse of m and applies it locally without new feedback
func (d *Dispatcher) revert(ctx context.Context, m *mode) {
	inverse := modeFor(m.inverse)
	d.spawn(ctx, func(ctx context.Context) {
		if _, ok := d.send(ctx, m.inverse); !ok {
			return
		}
		if inverse != nil {
			inverse.apply(d.ui)
		}
		d.logger.Info("mode change undone", "command", m.inverse)
	})
}
