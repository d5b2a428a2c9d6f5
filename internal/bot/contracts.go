package bot

import (
	"context"
	"time"

	"cabino/internal/bot/state_manager"
	"cabino/internal/catalog"
	"cabino/internal/stats"
	"cabino/internal/storage"
	"cabino/internal/storage/redis"
	"cabino/pkg/api"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAPI is the part of the Bot API client the bot calls.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ TelegramAPI = (*tgbotapi.BotAPI)(nil)

type StateManager interface {
	GetUserDialogState(ctx context.Context, chatID int64) (*redis.UserState, error)
	SetStep(ctx context.Context, chatID int64, step string) error
	StartEstimate(ctx context.Context, chatID int64) error
	SetDimensions(ctx context.Context, chatID int64, length, width, height float64) error
	SetCabinetType(ctx context.Context, chatID int64, id string) error
	SetMaterial(ctx context.Context, chatID int64, id string) error
	SetTotalPrice(ctx context.Context, chatID int64, price int64) error
	SetPhoneNumber(ctx context.Context, chatID int64, phone string) error
	SetUsername(ctx context.Context, chatID int64, username string) error
	ResetDialogState(ctx context.Context, chatID int64) error
}

var _ StateManager = (*state_manager.UserDialogStateManager)(nil)

type LeadStorage interface {
	GetCatalog(ctx context.Context) (catalog.Catalog, error)
	SaveLead(ctx context.Context, lead storage.Lead) (int64, error)
	GetLeadByID(ctx context.Context, leadID int64) (*storage.Lead, error)
	UpdateLeadStatus(ctx context.Context, leadID int64, status string) error
	GetLeadStatistics(ctx context.Context) (*storage.LeadStatistics, error)
	ExportLeadsToExcel(ctx context.Context, dir, name string) (string, error)
	CheckRateLimit(ctx context.Context, userID int64, action string, limit int64, window time.Duration) (bool, error)
	CountEstimate(ctx context.Context) error
}

var _ LeadStorage = (*storage.PostgresStorage)(nil)

type StatsProvider interface {
	Get(ctx context.Context) stats.Statistics
}

var _ StatsProvider = (*stats.Service)(nil)

// LeadForwarder pushes captured leads to the CRM.
type LeadForwarder interface {
	Enabled() bool
	CreateLead(ctx context.Context, lead api.LeadRequest) (string, error)
}

var _ LeadForwarder = (*api.Client)(nil)
