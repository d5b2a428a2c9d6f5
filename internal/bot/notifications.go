package bot

import (
	"context"
	"fmt"

	"cabino/internal/estimator"
	"cabino/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) notifyPrivacyAgreement(ctx context.Context, chatID int64) {
	if b.cfg.Admin.ChannelID == 0 {
		return
	}

	username := "—"
	if state, err := b.state.GetUserDialogState(ctx, chatID); err == nil &&
		state.Userdata != nil && state.Userdata.Username != nil {
		username = "@" + *state.Userdata.Username
	}

	text := fmt.Sprintf("🔐 کاربر %s سیاست حفظ حریم خصوصی را پذیرفت.", username)
	if _, err := b.bot.Send(tgbotapi.NewMessage(b.cfg.Admin.ChannelID, text)); err != nil {
		b.logger.Error("Failed to send privacy agreement notification to channel",
			zap.Error(err))
	}
}

// notifyNewLeadToChannel posts a short summary to the team channel.
func (b *Bot) notifyNewLeadToChannel(lead storage.Lead) {
	if b.cfg.Admin.ChannelID == 0 {
		b.logger.Debug("Channel notifications disabled - no channel ID configured")
		return
	}

	text := fmt.Sprintf(
		"📦 درخواست جدید #%d\n"+
			"ابعاد: %g × %g × %g متر\n"+
			"قیمت: %s تومان\n"+
			"تماس: %s",
		lead.ID,
		lead.Length, lead.Width, lead.Height,
		estimator.GroupThousands(lead.TotalPrice),
		FormatPhoneNumber(lead.Contact),
	)

	if _, err := b.bot.Send(tgbotapi.NewMessage(b.cfg.Admin.ChannelID, text)); err != nil {
		b.logger.Error("Failed to send channel notification",
			zap.Int64("lead_id", lead.ID),
			zap.Error(err))
	}
}

// notifyAdmins sends every admin the lead details with status buttons and
// an Excel sheet of the lead.
func (b *Bot) notifyAdmins(ctx context.Context, lead storage.Lead, cabinetTitle, materialTitle string) {
	path, err := storage.ExportLeadToExcel(lead, b.cfg.Admin.ReportDir)
	if err != nil {
		b.logger.Error("Failed to create Excel file for lead",
			zap.Int64("lead_id", lead.ID),
			zap.Error(err))
	}

	for _, adminID := range b.cfg.Admin.IDs {
		if adminID == 0 {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		msg := tgbotapi.NewMessage(adminID, FormatLeadNotification(lead, cabinetTitle, materialTitle))
		msg.ReplyMarkup = b.createLeadStatusKeyboard(lead.ID)
		if _, err := b.bot.Send(msg); err != nil {
			b.logger.Error("Failed to send admin notification",
				zap.Int64("admin_id", adminID),
				zap.Int64("lead_id", lead.ID),
				zap.Error(err))
			continue
		}

		if path == "" {
			continue
		}
		doc := tgbotapi.NewDocument(adminID, tgbotapi.FilePath(path))
		doc.Caption = fmt.Sprintf("📊 جزئیات درخواست #%d", lead.ID)
		if _, err := b.bot.Send(doc); err != nil {
			b.logger.Error("Failed to send Excel file to admin",
				zap.Int64("admin_id", adminID),
				zap.Int64("lead_id", lead.ID),
				zap.Error(err))
		}
	}
}
