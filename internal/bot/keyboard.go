package bot

import (
	"cabino/internal/catalog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BOT KEYBOARDS

const (
	btnAgree        = "✅ موافقم"
	btnEstimate     = "📐 محاسبه قیمت"
	btnStats        = "📊 درباره ما"
	btnCancel       = "❌ انصراف"
	btnOrder        = "📞 درخواست مشاوره"
	btnRecalculate  = "🔁 محاسبه دوباره"
	btnShareContact = "📱 ارسال شماره"
	btnManualPhone  = "✍️ وارد کردن دستی"
)

func (b *Bot) createPrivacyAgreementKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAgree),
		),
	)
}

func (b *Bot) createMainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnEstimate),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStats),
		),
	)
}

func (b *Bot) createCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

// createOptionsKeyboard lists catalog options one per row, labelled by title.
func (b *Bot) createOptionsKeyboard(options []catalog.Option) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options)+1)
	for _, o := range options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(o.Title)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)))
	return tgbotapi.NewReplyKeyboard(rows...)
}

func (b *Bot) createResultKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnOrder),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRecalculate),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func (b *Bot) createContactRequestKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(btnShareContact),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnManualPhone),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func (b *Bot) createLeadStatusKeyboard(leadID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 در حال پیگیری", statusCallbackData(leadID, "processing")),
			tgbotapi.NewInlineKeyboardButtonData("✅ انجام شد", statusCallbackData(leadID, "completed")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ لغو", statusCallbackData(leadID, "cancelled")),
		),
	)
}
