package bot

import (
	"context"
	"errors"
	"fmt"

	"cabino/internal/bot/state_manager"
	"cabino/internal/catalog"
	"cabino/internal/estimator"
	"cabino/internal/storage/redis"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const dimensionsPrompt = `ابعاد اتاق را به متر و با فاصله وارد کنید:
طول عرض ارتفاع

مثال: ۴ ۳ ۲.۸
طول و عرض بین ۱ تا ۲۰ متر، ارتفاع بین ۲ تا ۵ متر.`

func (b *Bot) setStep(ctx context.Context, chatID int64, step string) {
	if err := b.state.SetStep(ctx, chatID, step); err != nil {
		b.logger.Error("Failed to set dialog step",
			zap.Int64("chat_id", chatID),
			zap.String("step", step),
			zap.Error(err))
	}
}

func (b *Bot) handlePrivacyAgreement(ctx context.Context, chatID int64, text string) {
	if text != btnAgree {
		b.sendError(chatID, fmt.Sprintf("برای ادامه، دکمه «%s» را بزنید", btnAgree))
		return
	}

	b.notifyPrivacyAgreement(ctx, chatID)
	b.sendText(chatID, "ممنون! حالا می‌توانید قیمت کابینت آشپزخانه خود را محاسبه کنید.", nil)
	b.showMainMenu(ctx, chatID)
}

func (b *Bot) handleMainMenu(ctx context.Context, chatID int64, text string) {
	switch text {
	case btnEstimate:
		b.startEstimate(ctx, chatID)
	case btnStats:
		b.handleStats(ctx, chatID)
	default:
		b.handleDefault(ctx, chatID)
	}
}

func (b *Bot) startEstimate(ctx context.Context, chatID int64) {
	if err := b.state.StartEstimate(ctx, chatID); err != nil {
		b.logger.Error("Failed to start estimate",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "خطا در شروع محاسبه")
		return
	}
	b.sendText(chatID, dimensionsPrompt, b.createCancelKeyboard())
}

func (b *Bot) handleDimensions(ctx context.Context, chatID int64, text string) {
	length, width, height, err := ParseDimensions(text)
	if err != nil {
		b.sendError(chatID, "فرمت نادرست است. سه عدد با فاصله وارد کنید، مثلاً: ۴ ۳ ۲.۸")
		return
	}

	// Multipliers are chosen in the next steps; only the dimensions are checked here.
	err = estimator.Validate(estimator.Input{
		Length:                length,
		Width:                 width,
		Height:                height,
		CabinetTypeMultiplier: 1,
		MaterialMultiplier:    1,
	})
	if verr, ok := estimator.AsValidationError(err); ok {
		b.sendError(chatID, "ابعاد وارد شده مجاز نیست:\n"+FormatFieldErrors(verr))
		return
	}

	if err := b.state.SetDimensions(ctx, chatID, length, width, height); err != nil {
		b.logger.Error("Failed to set dimensions",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "خطا در ذخیره ابعاد")
		return
	}

	cat := b.loadCatalog(ctx)
	b.sendText(chatID, "نوع کابینت را انتخاب کنید:", b.createOptionsKeyboard(cat.CabinetTypes))
	b.setStep(ctx, chatID, state_manager.StepCabinetType)
}

func (b *Bot) handleCabinetType(ctx context.Context, chatID int64, text string) {
	cat := b.loadCatalog(ctx)
	option, err := cat.LookupTitle(catalog.KindCabinetType, text)
	if err != nil {
		b.sendError(chatID, "لطفاً یکی از گزینه‌های منو را انتخاب کنید")
		return
	}

	if err := b.state.SetCabinetType(ctx, chatID, option.ID); err != nil {
		b.logger.Error("Failed to set cabinet type",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "خطا در ذخیره نوع کابینت")
		return
	}

	b.sendText(chatID, "جنس کابینت را انتخاب کنید:", b.createOptionsKeyboard(cat.Materials))
	b.setStep(ctx, chatID, state_manager.StepMaterial)
}

func (b *Bot) handleMaterial(ctx context.Context, chatID int64, text string) {
	option, err := b.loadCatalog(ctx).LookupTitle(catalog.KindMaterial, text)
	if err != nil {
		b.sendError(chatID, "لطفاً یکی از گزینه‌های منو را انتخاب کنید")
		return
	}

	if err := b.state.SetMaterial(ctx, chatID, option.ID); err != nil {
		b.logger.Error("Failed to set material",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "خطا در ذخیره جنس کابینت")
		return
	}

	b.showEstimate(ctx, chatID)
}

// showEstimate prices the completed form and counts the price up in the
// result message.
func (b *Bot) showEstimate(ctx context.Context, chatID int64) {
	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "خطا در پردازش درخواست")
		return
	}

	in, _, _, err := b.estimateInput(ctx, state.Draft)
	if err != nil {
		b.logger.Warn("Incomplete estimate form",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "اطلاعات فرم کامل نیست. دوباره شروع کنیم.")
		b.startEstimate(ctx, chatID)
		return
	}

	res, err := b.estimator.Estimate(in)
	if verr, ok := estimator.AsValidationError(err); ok {
		b.sendError(chatID, FormatFieldErrors(verr))
		b.startEstimate(ctx, chatID)
		return
	}
	if err != nil {
		b.logger.Error("Failed to estimate price",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "خطا در محاسبه قیمت")
		return
	}

	if err := b.state.SetTotalPrice(ctx, chatID, res.TotalPrice); err != nil {
		b.logger.Error("Failed to store total price",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	if err := b.storage.CountEstimate(ctx); err != nil {
		b.logger.Warn("Failed to count estimate", zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, FormatEstimate(res, 0))
	sent, err := b.sendMessage(msg)
	if err != nil {
		return
	}
	b.animatePrice(ctx, chatID, sent.MessageID, res)

	b.sendText(chatID, "برای مشاوره رایگان و اندازه‌گیری دقیق، درخواست خود را ثبت کنید.", b.createResultKeyboard())
	b.setStep(ctx, chatID, state_manager.StepResult)
}

func (b *Bot) handleResult(ctx context.Context, chatID int64, text string) {
	switch text {
	case btnOrder:
		b.sendText(chatID, "شماره تماس خود را ارسال کنید یا دستی وارد کنید:", b.createContactRequestKeyboard())
		b.setStep(ctx, chatID, state_manager.StepContactMethod)
	case btnRecalculate:
		b.startEstimate(ctx, chatID)
	default:
		b.handleDefault(ctx, chatID)
	}
}

func (b *Bot) handleContactMethod(ctx context.Context, chatID int64, text string) {
	if text != btnManualPhone {
		// a typed number is accepted right away
		b.handlePhoneNumber(ctx, chatID, text)
		return
	}

	b.sendText(chatID, "شماره موبایل خود را وارد کنید، مثلاً ۰۹۱۲۱۲۳۴۵۶۷", b.createCancelKeyboard())
	b.setStep(ctx, chatID, state_manager.StepPhoneNumber)
}

func (b *Bot) handlePhoneNumber(ctx context.Context, chatID int64, text string) {
	if !IsValidPhoneNumber(text) {
		b.sendError(chatID, "شماره تماس معتبر نیست. مثال: ۰۹۱۲۱۲۳۴۵۶۷")
		return
	}
	phone := NormalizePhoneNumber(text)

	if err := b.state.SetPhoneNumber(ctx, chatID, phone); err != nil {
		b.logger.Error("Failed to set phone number",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "خطا در ذخیره شماره تماس")
		return
	}

	leadID, err := b.createLead(ctx, chatID, phone)
	if err != nil {
		b.logger.Error("Failed to create lead",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "ثبت درخواست ناموفق بود. لطفاً دوباره تلاش کنید.")
		return
	}

	b.sendText(chatID, fmt.Sprintf(
		"✅ درخواست شما با شماره %s ثبت شد.\nکارشناسان ما به زودی با شما تماس می‌گیرند.",
		estimator.ToPersianDigits(fmt.Sprint(leadID)),
	), nil)
	b.showMainMenu(ctx, chatID)
}

// loadCatalog falls back to the built-in options when storage is unavailable.
func (b *Bot) loadCatalog(ctx context.Context) catalog.Catalog {
	c, err := b.storage.GetCatalog(ctx)
	if err != nil {
		b.logger.Warn("Failed to load catalog, using defaults", zap.Error(err))
		return catalog.Default()
	}
	return c
}

var errIncompleteDraft = errors.New("estimate form is incomplete")

// estimateInput resolves the draft's option IDs into multipliers.
func (b *Bot) estimateInput(ctx context.Context, d *redis.Draft) (estimator.Input, catalog.Option, catalog.Option, error) {
	if !d.Complete() {
		return estimator.Input{}, catalog.Option{}, catalog.Option{}, errIncompleteDraft
	}

	cat := b.loadCatalog(ctx)
	cabinetType, err := cat.Lookup(catalog.KindCabinetType, *d.CabinetType)
	if err != nil {
		return estimator.Input{}, catalog.Option{}, catalog.Option{}, err
	}
	material, err := cat.Lookup(catalog.KindMaterial, *d.Material)
	if err != nil {
		return estimator.Input{}, catalog.Option{}, catalog.Option{}, err
	}

	return estimator.Input{
		Length:                *d.Length,
		Width:                 *d.Width,
		Height:                *d.Height,
		CabinetTypeMultiplier: cabinetType.Multiplier,
		MaterialMultiplier:    material.Multiplier,
	}, cabinetType, material, nil
}
