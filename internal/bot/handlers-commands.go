package bot

import (
	"context"
	"strings"

	"cabino/internal/bot/state_manager"
	"cabino/internal/stats"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const helpText = `دستورات:
/start - شروع
/estimate - محاسبه قیمت کابینت
/stats - درباره ما
/help - راهنما

ابعاد اتاق را به متر وارد کنید: طول و عرض بین ۱ تا ۲۰ و ارتفاع بین ۲ تا ۵ متر.`

const adminHelpText = `

دستورات مدیر:
/export - خروجی اکسل همه درخواست‌ها
/export <id> - خروجی یک درخواست
/leads - آمار درخواست‌ها
/status <id> <new|processing|completed|cancelled>`

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) {
	switch command {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.handleHelp(chatID)
	case "estimate":
		b.startEstimate(ctx, chatID)
	case "stats":
		b.handleStats(ctx, chatID)
	case "export", "leads", "status":
		if !b.isAdmin(chatID) {
			b.handleUnknownCommand(chatID)
			return
		}
		b.handleAdminCommand(ctx, chatID, command, strings.Fields(args))
	default:
		b.handleUnknownCommand(chatID)
	}
}

func (b *Bot) handleDefault(ctx context.Context, chatID int64) {
	b.sendError(chatID, "متوجه نشدم. لطفاً از منو استفاده کنید یا /start را بزنید.")
}

func (b *Bot) handleUnknownCommand(chatID int64) {
	b.sendError(chatID, "دستور ناشناخته. برای شروع /start را بزنید.")
}

func (b *Bot) handleHelp(chatID int64) {
	text := helpText
	if b.isAdmin(chatID) {
		text += adminHelpText
	}
	b.sendText(chatID, text, nil)
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	// returning users already accepted the privacy policy
	if state != nil && state.Step != "" && state.Step != state_manager.StepPrivacyAgreement {
		b.showMainMenu(ctx, chatID)
		return
	}

	text := `سلام! 👋
به ربات برآورد قیمت کابینت خوش آمدید.

⚠️ پیش از ادامه، لطفاً سیاست حفظ حریم خصوصی را بپذیرید.
با استفاده از این ربات، با پردازش اطلاعات تماس خود برای پیگیری درخواست موافقت می‌کنید.`

	b.sendText(chatID, text, b.createPrivacyAgreementKeyboard())
	if err := b.state.SetStep(ctx, chatID, state_manager.StepPrivacyAgreement); err != nil {
		b.logger.Error("Failed to set privacy agreement state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) showMainMenu(ctx context.Context, chatID int64) {
	if err := b.state.ResetDialogState(ctx, chatID); err != nil {
		b.logger.Error("Failed to reset dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	b.sendText(chatID, "از منو یکی از گزینه‌ها را انتخاب کنید 👇", b.createMainMenuKeyboard())
}

func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	b.stopPriceAnimation(chatID)
	b.showMainMenu(ctx, chatID)
}

// handleStats shows the company counters, counting up from zero.
func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	st := b.stats.Get(ctx)

	sent, err := b.sendMessage(tgbotapi.NewMessage(chatID, FormatStatistics(stats.Statistics{})))
	if err != nil {
		return
	}
	b.animateStatistics(ctx, chatID, sent.MessageID, st)
}
