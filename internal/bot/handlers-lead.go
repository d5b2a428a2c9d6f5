package bot

import (
	"context"
	"fmt"

	"cabino/internal/storage"
	"cabino/pkg/api"

	"go.uber.org/zap"
)

// createLead prices the chat's form once more, stores the lead and fans
// out the notifications.
func (b *Bot) createLead(ctx context.Context, chatID int64, phone string) (int64, error) {
	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("failed to get dialog state: %w", err)
	}

	in, cabinetType, material, err := b.estimateInput(ctx, state.Draft)
	if err != nil {
		return 0, fmt.Errorf("failed to build estimate input: %w", err)
	}

	res, err := b.estimator.Estimate(in)
	if err != nil {
		return 0, fmt.Errorf("failed to estimate: %w", err)
	}

	lead := storage.NewLead(chatID, in, cabinetType.ID, material.ID, res)
	lead.Contact = phone
	if state.Userdata != nil && state.Userdata.Username != nil {
		lead.Username = *state.Userdata.Username
	}

	leadID, err := b.storage.SaveLead(ctx, lead)
	if err != nil {
		return 0, fmt.Errorf("failed to save lead: %w", err)
	}
	lead.ID = leadID

	b.logger.Info("Lead created",
		zap.Int64("lead_id", leadID),
		zap.Int64("chat_id", chatID),
		zap.Int64("total_price", lead.TotalPrice))

	go b.notifyAdmins(ctx, lead, cabinetType.Title, material.Title)
	go b.notifyNewLeadToChannel(lead)
	go b.forwardToCRM(ctx, lead)

	return leadID, nil
}

func (b *Bot) forwardToCRM(ctx context.Context, lead storage.Lead) {
	if b.crm == nil || !b.crm.Enabled() {
		return
	}

	crmID, err := b.crm.CreateLead(ctx, api.LeadRequest{
		PublicID:    lead.PublicID,
		UserID:      lead.UserID,
		Username:    lead.Username,
		Length:      lead.Length,
		Width:       lead.Width,
		Height:      lead.Height,
		CabinetType: lead.CabinetType,
		Material:    lead.Material,
		TotalArea:   lead.TotalArea,
		TotalPrice:  lead.TotalPrice,
		Contact:     lead.Contact,
	})
	if err != nil {
		b.logger.Error("Failed to forward lead to CRM",
			zap.Int64("lead_id", lead.ID),
			zap.Error(err))
		return
	}

	b.logger.Info("Lead forwarded to CRM",
		zap.Int64("lead_id", lead.ID),
		zap.String("crm_id", crmID))
}
