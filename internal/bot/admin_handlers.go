package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cabino/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleAdminCommand(ctx context.Context, chatID int64, cmd string, args []string) {
	switch cmd {
	case "export":
		if len(args) == 0 {
			b.handleExportAllLeads(ctx, chatID)
			return
		}
		leadID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.sendError(chatID, "شناسه درخواست نامعتبر است")
			return
		}
		b.handleExportSingleLead(ctx, chatID, leadID)
	case "leads":
		b.handleLeadStats(ctx, chatID)
	case "status":
		if len(args) < 2 {
			b.sendError(chatID, "استفاده: /status <id> <new|processing|completed|cancelled>")
			return
		}
		leadID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.sendError(chatID, "شناسه درخواست نامعتبر است")
			return
		}
		b.handleStatusUpdate(ctx, chatID, leadID, args[1])
	default:
		b.sendError(chatID, "دستور مدیر ناشناخته است")
	}
}

func (b *Bot) handleStatusUpdate(ctx context.Context, chatID, leadID int64, newStatus string) {
	if !storage.ValidStatus(newStatus) {
		b.sendError(chatID, "وضعیت نامعتبر. مقادیر مجاز: new, processing, completed, cancelled")
		return
	}

	if err := b.storage.UpdateLeadStatus(ctx, leadID, newStatus); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.sendError(chatID, fmt.Sprintf("درخواست #%d پیدا نشد", leadID))
			return
		}
		b.logger.Error("Failed to update lead status",
			zap.Int64("lead_id", leadID),
			zap.String("status", newStatus),
			zap.Error(err))
		b.sendError(chatID, "خطا در به‌روزرسانی وضعیت")
		return
	}

	b.sendText(chatID, fmt.Sprintf("✅ وضعیت درخواست #%d: %s", leadID, statusTitles[newStatus]), nil)

	lead, err := b.storage.GetLeadByID(ctx, leadID)
	if err != nil {
		b.logger.Warn("Failed to load lead for user notification",
			zap.Int64("lead_id", leadID),
			zap.Error(err))
		return
	}
	userMsg := tgbotapi.NewMessage(lead.UserID, fmt.Sprintf(
		"ℹ️ وضعیت درخواست شما (#%d): %s", leadID, statusTitles[newStatus]))
	if _, err := b.bot.Send(userMsg); err != nil {
		b.logger.Warn("Failed to notify user about status change",
			zap.Int64("user_id", lead.UserID),
			zap.Error(err))
	}
}

func (b *Bot) handleLeadStats(ctx context.Context, chatID int64) {
	st, err := b.storage.GetLeadStatistics(ctx)
	if err != nil {
		b.logger.Error("Failed to get lead statistics", zap.Error(err))
		b.sendError(chatID, "خطا در دریافت آمار")
		return
	}
	b.sendText(chatID, FormatLeadStatistics(st), nil)
}

func (b *Bot) handleExportAllLeads(ctx context.Context, chatID int64) {
	name := fmt.Sprintf("leads_report_%s", time.Now().Format("20060102_1504"))
	path, err := b.storage.ExportLeadsToExcel(ctx, b.cfg.Admin.ReportDir, name)
	if err != nil {
		b.logger.Error("Failed to export leads", zap.Error(err))
		b.sendError(chatID, "خطا در تهیه خروجی")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "📊 خروجی همه درخواست‌ها"
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send Excel file", zap.Error(err))
		b.sendError(chatID, "خطا در ارسال فایل")
	}
}

func (b *Bot) handleExportSingleLead(ctx context.Context, chatID, leadID int64) {
	lead, err := b.storage.GetLeadByID(ctx, leadID)
	if err != nil {
		b.logger.Error("Failed to get lead",
			zap.Int64("lead_id", leadID),
			zap.Error(err))
		b.sendError(chatID, fmt.Sprintf("درخواست #%d پیدا نشد", leadID))
		return
	}

	path, err := storage.ExportLeadToExcel(*lead, b.cfg.Admin.ReportDir)
	if err != nil {
		b.logger.Error("Failed to export lead",
			zap.Int64("lead_id", leadID),
			zap.Error(err))
		b.sendError(chatID, "خطا در تهیه خروجی")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("📊 درخواست #%d", leadID)
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send Excel file", zap.Error(err))
		b.sendError(chatID, "خطا در ارسال فایل")
	}
}
