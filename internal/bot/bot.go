package bot

import (
	"context"
	"fmt"
	"sync"

	"cabino/internal/bot/state_manager"
	"cabino/internal/config"
	"cabino/internal/estimator"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const rateLimitAction = "message"

type Bot struct {
	bot       TelegramAPI
	logger    *zap.Logger
	state     StateManager
	storage   LeadStorage
	estimator *estimator.Estimator
	stats     StatsProvider
	crm       LeadForwarder
	cfg       *config.Config
	mu        sync.Mutex
	handlers  map[string]func(context.Context, int64, string)

	animMu     sync.Mutex
	animations map[int64]*chatAnimation
	counters   map[int64]*chatAnimation
}

func New(
	cfg *config.Config,
	state StateManager,
	leadStorage LeadStorage,
	est *estimator.Estimator,
	statsProvider StatsProvider,
	crm LeadForwarder,
	logger *zap.Logger,
) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	botAPI.Debug = cfg.Telegram.Debug

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	b := &Bot{
		bot:        botAPI,
		logger:     logger,
		state:      state,
		storage:    leadStorage,
		estimator:  est,
		stats:      statsProvider,
		crm:        crm,
		cfg:        cfg,
		animations: make(map[int64]*chatAnimation),
		counters:   make(map[int64]*chatAnimation),
	}

	b.registerHandlers()
	return b, nil
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, string){
		state_manager.StepPrivacyAgreement: b.handlePrivacyAgreement,
		state_manager.StepMainMenu:         b.handleMainMenu,
		state_manager.StepDimensions:       b.handleDimensions,
		state_manager.StepCabinetType:      b.handleCabinetType,
		state_manager.StepMaterial:         b.handleMaterial,
		state_manager.StepResult:           b.handleResult,
		state_manager.StepContactMethod:    b.handleContactMethod,
		state_manager.StepPhoneNumber:      b.handlePhoneNumber,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			b.bot.StopReceivingUpdates()
			b.stopAnimations()
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.mu.Lock()
			if update.Message != nil {
				b.processMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.processCallback(ctx, update.CallbackQuery)
			}
			b.mu.Unlock()
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if b.rateLimited(ctx, chatID) {
		b.sendError(chatID, "تعداد درخواست‌ها زیاد است. لطفاً کمی بعد دوباره تلاش کنید.")
		return
	}

	if msg.From != nil && msg.From.UserName != "" {
		if err := b.state.SetUsername(ctx, chatID, msg.From.UserName); err != nil {
			b.logger.Warn("Failed to store username",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command(), msg.CommandArguments())
		return
	}

	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "خطا در پردازش درخواست")
		return
	}

	if msg.Contact != nil {
		if state.Step == state_manager.StepContactMethod || state.Step == state_manager.StepPhoneNumber {
			b.handlePhoneNumber(ctx, chatID, msg.Contact.PhoneNumber)
			return
		}
	}

	if msg.Text == btnCancel {
		b.handleCancel(ctx, chatID)
		return
	}

	if handler, exists := b.handlers[state.Step]; exists {
		handler(ctx, chatID, msg.Text)
	} else {
		b.handleDefault(ctx, chatID)
	}
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", callback.Data))

	if _, err := b.bot.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}

	leadID, status, ok := parseStatusCallback(callback.Data)
	if !ok || callback.From == nil || !b.isAdmin(callback.From.ID) {
		return
	}
	b.handleStatusUpdate(ctx, chatID, leadID, status)
}

// rateLimited fails open: a Redis outage must not lock users out.
func (b *Bot) rateLimited(ctx context.Context, chatID int64) bool {
	exceeded, err := b.storage.CheckRateLimit(ctx, chatID, rateLimitAction,
		b.cfg.Telegram.RateLimit, b.cfg.Telegram.RateWindow)
	if err != nil {
		b.logger.Warn("Rate limit check failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return false
	}
	return exceeded
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.cfg.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	sent, err := b.bot.Send(msg)
	if err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
	return sent, err
}

func (b *Bot) sendText(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, _ = b.sendMessage(msg)
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text, nil)
}
