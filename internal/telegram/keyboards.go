package telegram

import (
	"encoding/json"
	"fmt"

	"github.com/PaulSonOfLars/gotgbot/v2"
)

// Callback types
const (
	callbackUndo = "u"
)

// CallbackData stores callback information for keyboard buttons
type CallbackData struct {
	Type  string `json:"t"`            // "u" for undo
	Token string `json:"id,omitempty"` // pending undo token
}

// BuildUndoKeyboard creates the single-button keyboard under a confirmation
func BuildUndoKeyboard(token, label string) gotgbot.InlineKeyboardMarkup {
	data, _ := json.Marshal(CallbackData{Type: callbackUndo, Token: token})

	return gotgbot.InlineKeyboardMarkup{
		InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
			{
				{Text: "Undo: " + label, CallbackData: string(data)},
			},
		},
	}
}

// ParseCallbackData parses the callback_data from a button press
func ParseCallbackData(data string) (*CallbackData, error) {
	var cb CallbackData
	if err := json.Unmarshal([]byte(data), &cb); err != nil {
		return nil, fmt.Errorf("parsing callback data: %w", err)
	}
	return &cb, nil
}

// menu is the command list shown in Telegram's "/" menu. Telegram command
// names cannot contain hyphens, so the width commands use underscores.
var menu = []gotgbot.BotCommand{
	{Command: "ping", Description: "Measure the round trip to the server"},
	{Command: "day", Description: "Switch to day mode"},
	{Command: "night", Description: "Switch to night mode"},
	{Command: "theme", Description: "Switch theme: day, light, night or dark"},
	{Command: "fluid_width", Description: "Use the full window width"},
	{Command: "fixed_width", Description: "Use a fixed layout width"},
	{Command: "settings", Description: "Open your account settings"},
}
