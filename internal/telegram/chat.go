package telegram

import (
	"fmt"
	"html"
	"strconv"

	"github.com/PaulSonOfLars/gotgbot/v2"

	"github.com/codegangsta/zcommand/internal/zcommand"
	"github.com/codegangsta/zcommand/internal/zulip"
)

// chatUI is the dispatcher's view of one Telegram chat
type chatUI struct {
	chatID int64
	bot    *Bot
}

func (u *chatUI) key() string {
	return strconv.FormatInt(u.chatID, 10)
}

func (u *chatUI) TellUser(msg string) {
	u.bot.reply(u.chatID, msg)
}

func (u *chatUI) Show(fb zcommand.Feedback) {
	token := u.bot.chats.AddUndo(u.chatID, fb.Undo)

	text := fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(fb.Title), fb.Body)
	msgID, err := u.bot.messenger.sendMessage(u.chatID, text, &gotgbot.SendMessageOpts{
		ParseMode:   "HTML",
		ReplyMarkup: BuildUndoKeyboard(token, fb.UndoLabel),
	})
	if err != nil {
		u.bot.logger.Error("failed to send confirmation", "chat_id", u.chatID, "error", err)
		u.bot.chats.TakeUndo(u.chatID, token)
		return
	}
	u.bot.chats.SetUndoMessage(u.chatID, token, msgID)
}

func (u *chatUI) EnableNightMode() {
	u.bot.settings.SetNightMode(u.key(), true)
}

func (u *chatUI) DisableNightMode() {
	u.bot.settings.SetNightMode(u.key(), false)
}

func (u *chatUI) SetLayoutWidth(fluid bool) {
	u.bot.settings.SetFluidWidth(u.key(), fluid)
}

func (u *chatUI) Navigate(location string) {
	u.bot.reply(u.chatID, "Open "+zulip.LocationURL(u.bot.serverURL, location))
}
