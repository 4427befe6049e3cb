package telegram

import "strings"

// normalizeCommand rewrites the command word of a Telegram message into the
// client's spelling: "/fluid_width@mybot" becomes "/fluid-width". Arguments
// are left alone and non-commands are returned unchanged.
func normalizeCommand(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return text
	}

	name, args, hasArgs := strings.Cut(trimmed, " ")
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	name = strings.ReplaceAll(name, "_", "-")

	if hasArgs {
		return name + " " + args
	}
	return name
}
