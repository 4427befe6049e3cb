package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"

	"github.com/codegangsta/zcommand/internal/markup"
	"github.com/codegangsta/zcommand/internal/prefs"
	"github.com/codegangsta/zcommand/internal/trackers"
	"github.com/codegangsta/zcommand/internal/zcommand"
)

// Forwarder posts text the dispatcher did not consume as a chat message
type Forwarder interface {
	SendMessage(ctx context.Context, to, content string) (int64, error)
}

// Options configures a Bot
type Options struct {
	Token     string
	Allowlist []int64
	ServerURL string // used to build settings links
	ComposeTo string // recipient of forwarded messages
	Settings  *prefs.Store
	Logger    *slog.Logger
}

// messenger is the slice of the Telegram API the chat UI needs
type messenger interface {
	sendMessage(chatID int64, text string, opts *gotgbot.SendMessageOpts) (int64, error)
	deleteMessage(chatID, msgID int64) error
}

// Bot is the Telegram frontend: each chat gets its own dispatcher whose UI
// is that chat
type Bot struct {
	bot       *gotgbot.Bot
	updater   *ext.Updater
	allowlist map[int64]bool
	client    zcommand.Client
	forward   Forwarder
	chats     *trackers.Manager
	settings  *prefs.Store
	renderer  *markup.HTML
	messenger messenger
	serverURL string
	composeTo string
	logger    *slog.Logger
}

// New creates a new Telegram bot
func New(client zcommand.Client, forward Forwarder, opts Options) (*Bot, error) {
	// Create HTTP client with longer timeout for long-polling
	httpClient := http.Client{
		Timeout: 60 * time.Second,
	}

	bot, err := gotgbot.NewBot(opts.Token, &gotgbot.BotOpts{
		BotClient: &gotgbot.BaseBotClient{
			Client: httpClient,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}

	b := newBot(client, forward, opts)
	b.bot = bot
	b.messenger = b
	return b, nil
}

// newBot wires everything except the Telegram API connection
func newBot(client zcommand.Client, forward Forwarder, opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	settings := opts.Settings
	if settings == nil {
		settings = prefs.NewStore("", logger)
	}

	// Convert allowlist slice to map for O(1) lookup
	allowMap := make(map[int64]bool, len(opts.Allowlist))
	for _, id := range opts.Allowlist {
		allowMap[id] = true
	}

	b := &Bot{
		allowlist: allowMap,
		client:    client,
		forward:   forward,
		settings:  settings,
		renderer:  markup.NewHTML(),
		serverURL: opts.ServerURL,
		composeTo: opts.ComposeTo,
		logger:    logger,
	}
	b.chats = trackers.NewManager(b.newDispatcher)
	return b
}

func (b *Bot) newDispatcher(chatID int64) *zcommand.Dispatcher {
	ui := &chatUI{chatID: chatID, bot: b}
	return zcommand.New(b.client, zcommand.UI{
		Theme:     ui,
		Layout:    ui,
		Navigator: ui,
		Notifier:  ui,
		Feedback:  ui,
		Renderer:  b.renderer,
	}, b.logger.With("chat_id", chatID))
}

// Start begins polling for updates and blocks until context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(bot *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			b.logger.Error("dispatcher error", "error", err)
			return ext.DispatcherActionNoop
		},
	})

	b.updater = ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewMessage(nil, b.handleMessage))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.All, b.handleCallback))

	err := b.updater.StartPolling(b.bot, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout: 30,
			AllowedUpdates: []string{
				"message",
				"callback_query",
			},
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: 60 * time.Second,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("starting polling: %w", err)
	}

	if _, err := b.bot.SetMyCommands(menu, nil); err != nil {
		b.logger.Warn("failed to register command menu", "error", err)
	}

	b.logger.Info("telegram bot started",
		"username", b.bot.Username,
		"allowlist_count", len(b.allowlist),
	)

	<-ctx.Done()

	b.updater.Stop()
	b.chats.Wait()
	b.logger.Info("telegram bot stopped")

	return nil
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(bot *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	if msg == nil || msg.Text == "" || msg.From == nil {
		return nil
	}

	if !b.allowlist[msg.From.Id] {
		b.logger.Debug("ignoring message from non-allowed user",
			"user_id", msg.From.Id,
			"chat_id", msg.Chat.Id,
			"username", msg.From.Username,
		)
		return nil
	}

	b.handleText(context.Background(), msg.Chat.Id, msg.Text)
	return nil
}

// handleText runs text through the chat's dispatcher and forwards whatever
// it does not consume
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	if b.chats.Dispatcher(chatID).Process(ctx, normalizeCommand(text)) {
		return
	}

	id, err := b.forward.SendMessage(ctx, b.composeTo, text)
	if err != nil {
		b.logger.Error("failed to forward message", "chat_id", chatID, "error", err)
		b.reply(chatID, "Message not sent: server did not respond")
		return
	}
	b.logger.Info("message forwarded", "chat_id", chatID, "message_id", id)
}

// handleCallback processes inline keyboard button presses
func (b *Bot) handleCallback(bot *gotgbot.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	if cq == nil || ctx.EffectiveChat == nil {
		return nil
	}
	if !b.allowlist[cq.From.Id] {
		return nil
	}

	answer := b.handleUndo(ctx.EffectiveChat.Id, cq.Data)
	if _, err := cq.Answer(bot, &gotgbot.AnswerCallbackQueryOpts{Text: answer}); err != nil {
		b.logger.Warn("failed to answer callback", "error", err)
	}
	return nil
}

// handleUndo runs the undo behind a button and returns the toast text
func (b *Bot) handleUndo(chatID int64, data string) string {
	cb, err := ParseCallbackData(data)
	if err != nil {
		b.logger.Error("failed to parse callback data", "error", err, "data", data)
		return "Error processing selection"
	}
	if cb.Type != callbackUndo {
		return "Invalid action"
	}

	pending := b.chats.TakeUndo(chatID, cb.Token)
	if pending == nil {
		return "Undo expired"
	}

	pending.Undo()
	if pending.MessageID > 0 {
		if err := b.messenger.deleteMessage(chatID, pending.MessageID); err != nil {
			b.logger.Warn("failed to delete confirmation", "chat_id", chatID, "error", err)
		}
	}
	return "Undone"
}

// reply sends plain text, logging failures
func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.messenger.sendMessage(chatID, text, nil); err != nil {
		b.logger.Error("failed to send message",
			"chat_id", chatID,
			"error", err,
		)
	}
}

func (b *Bot) sendMessage(chatID int64, text string, opts *gotgbot.SendMessageOpts) (int64, error) {
	msg, err := b.bot.SendMessage(chatID, text, opts)
	if err != nil {
		return 0, err
	}
	return msg.MessageId, nil
}

func (b *Bot) deleteMessage(chatID, msgID int64) error {
	_, err := b.bot.DeleteMessage(chatID, msgID, nil)
	return err
}
