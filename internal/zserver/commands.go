package zserver

import (
	"errors"
	"fmt"
	"strings"
)

var errNoSlash = errors.New("There should be a leading slash in the zcommand.")

// execute runs a zcommand for user and returns the acknowledgement text
func (s *Server) execute(user, content string) (string, error) {
	if !strings.HasPrefix(content, "/") {
		return "", errNoSlash
	}
	command := content[1:]

	switch command {
	case "ping":
		return "", nil
	case "night", "dark":
		if !s.settings.SetNightMode(user, true) {
			return "You are still in night mode.", nil
		}
		return "Changed to night mode! To revert night mode, type `/day`.", nil
	case "day", "light":
		if !s.settings.SetNightMode(user, false) {
			return "You are still in day mode.", nil
		}
		return "Changed to day mode! To revert day mode, type `/night`.", nil
	case "fluid-width":
		if !s.settings.SetFluidWidth(user, true) {
			return "You are still in fluid width mode.", nil
		}
		return "Changed to fluid-width mode! To revert fluid-width mode, type `/fixed-width`.", nil
	case "fixed-width":
		if !s.settings.SetFluidWidth(user, false) {
			return "You are still in fixed width mode.", nil
		}
		return "Changed to fixed-width mode! To revert fixed-width mode, type `/fluid-width`.", nil
	}

	return "", fmt.Errorf("No such command: %s", command)
}
