package bot

import (
	"context"
	"sync/atomic"
	"time"

	"cabino/internal/animate"
	"cabino/internal/estimator"
	"cabino/internal/stats"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// chatAnimation is the count-up animator of one chat and its latest run.
type chatAnimation struct {
	animator *animate.Animator
	run      *animationRun
}

// animationRun is one count-up in one message. settled is set once the
// message shows finalText.
type animationRun struct {
	messageID int
	finalText string
	done      <-chan struct{}
	settled   atomic.Bool
}

// animatePrice edits the result message from 0 up to the price. A newer
// estimate in the same chat supersedes the running count-up; the
// superseded message is then set straight to its final text.
func (b *Bot) animatePrice(ctx context.Context, chatID int64, messageID int, res estimator.Result) {
	b.startAnimation(ctx, b.animations, chatID, messageID, b.cfg.Pricing.AnimationTime,
		FormatEstimate(res, res.TotalPrice),
		func(f animate.Frame) string {
			return FormatEstimate(res, f.Value(0, res.TotalPrice))
		})
}

// animateStatistics counts every statistic up from zero in one message.
func (b *Bot) animateStatistics(ctx context.Context, chatID int64, messageID int, target stats.Statistics) {
	b.startAnimation(ctx, b.counters, chatID, messageID, b.cfg.Stats.AnimationTime,
		FormatStatistics(target),
		func(f animate.Frame) string {
			return FormatStatistics(stats.Statistics{
				Projects:  f.Value(0, target.Projects),
				Clients:   f.Value(0, target.Clients),
				Years:     f.Value(0, target.Years),
				Estimates: f.Value(0, target.Estimates),
			})
		})
}

func (b *Bot) startAnimation(
	ctx context.Context,
	running map[int64]*chatAnimation,
	chatID int64,
	messageID int,
	duration time.Duration,
	finalText string,
	frameText func(animate.Frame) string,
) {
	b.animMu.Lock()
	defer b.animMu.Unlock()

	anim, ok := running[chatID]
	if !ok {
		anim = &chatAnimation{
			animator: animate.New(duration, b.cfg.Telegram.FrameInterval, animate.EaseOutCubic),
		}
		running[chatID] = anim
	}

	prev := anim.run
	run := &animationRun{messageID: messageID, finalText: finalText}
	anim.run = run

	var last string
	run.done = anim.animator.Start(ctx, func(f animate.Frame) {
		text := frameText(f)
		if text != last {
			last = text
			b.editMessage(chatID, messageID, text)
		}
		if text == finalText {
			run.settled.Store(true)
		}
	})

	// no frame of prev is rendered once Start has returned
	if prev != nil && prev.messageID != messageID {
		b.settle(chatID, prev)
	}

	go b.forgetAnimation(running, chatID, anim, run)
}

// forgetAnimation waits for run to end, makes sure its message shows the
// final text and drops the chat's animator unless a newer run took over.
func (b *Bot) forgetAnimation(running map[int64]*chatAnimation, chatID int64, anim *chatAnimation, run *animationRun) {
	<-run.done

	b.animMu.Lock()
	defer b.animMu.Unlock()

	b.settle(chatID, run)
	if running[chatID] == anim && anim.run == run {
		delete(running, chatID)
	}
}

// settle edits the run's message to its final text once. Callers hold
// animMu.
func (b *Bot) settle(chatID int64, run *animationRun) {
	if run.settled.Swap(true) {
		return
	}
	b.editMessage(chatID, run.messageID, run.finalText)
}

func (b *Bot) stopPriceAnimation(chatID int64) {
	b.animMu.Lock()
	defer b.animMu.Unlock()

	if anim, ok := b.animations[chatID]; ok {
		b.stopChatAnimation(chatID, anim)
		delete(b.animations, chatID)
	}
}

// stopAnimations ends every count-up, leaving each message on its final
// value.
func (b *Bot) stopAnimations() {
	b.animMu.Lock()
	defer b.animMu.Unlock()

	for chatID, anim := range b.animations {
		b.stopChatAnimation(chatID, anim)
		delete(b.animations, chatID)
	}
	for chatID, anim := range b.counters {
		b.stopChatAnimation(chatID, anim)
		delete(b.counters, chatID)
	}
}

func (b *Bot) stopChatAnimation(chatID int64, anim *chatAnimation) {
	anim.animator.Stop()
	if anim.run != nil {
		b.settle(chatID, anim.run)
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.bot.Send(edit); err != nil {
		b.logger.Debug("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
	}
}
