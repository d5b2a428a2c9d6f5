package state_manager

import (
	"context"
	"fmt"

	"cabino/internal/storage/redis"
)

// Dialog steps, in the order the estimate form is filled.
const (
	StepPrivacyAgreement = "privacy_agreement"
	StepMainMenu         = "main_menu"
	StepDimensions       = "dimensions"
	StepCabinetType      = "cabinet_type"
	StepMaterial         = "material"
	StepResult           = "result"
	StepContactMethod    = "contact_method"
	StepPhoneNumber      = "phone_number"
)

type UserDialogStateManager struct {
	redisStorage RedisStorage
}

func New(redisStorage RedisStorage) *UserDialogStateManager {
	return &UserDialogStateManager{redisStorage: redisStorage}
}

func (u *UserDialogStateManager) GetUserDialogState(ctx context.Context, chatID int64) (*redis.UserState, error) {
	state, err := u.redisStorage.GetUserDialogState(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("redisStorage.GetUserDialogState failed: %w", err)
	}
	return state, nil
}

func (u *UserDialogStateManager) setUserDialogState(ctx context.Context, chatID int64, state *redis.UserState) error {
	return u.redisStorage.SetUserDialogState(ctx, chatID, state)
}

func (u *UserDialogStateManager) update(ctx context.Context, chatID int64, apply func(*redis.UserState)) error {
	state, err := u.GetUserDialogState(ctx, chatID)
	if err != nil {
		return fmt.Errorf("GetUserDialogState failed: %w", err)
	}
	apply(state)
	return u.setUserDialogState(ctx, chatID, state)
}

func draft(state *redis.UserState) *redis.Draft {
	if state.Draft == nil {
		state.Draft = &redis.Draft{}
	}
	return state.Draft
}

func (u *UserDialogStateManager) SetStep(ctx context.Context, chatID int64, step string) error {
	return u.update(ctx, chatID, func(s *redis.UserState) {
		s.Step = step
	})
}

// StartEstimate clears the form and moves the chat to the dimensions step.
func (u *UserDialogStateManager) StartEstimate(ctx context.Context, chatID int64) error {
	return u.update(ctx, chatID, func(s *redis.UserState) {
		s.Step = StepDimensions
		s.Draft = &redis.Draft{}
	})
}

func (u *UserDialogStateManager) SetDimensions(ctx context.Context, chatID int64, length, width, height float64) error {
	return u.update(ctx, chatID, func(s *redis.UserState) {
		d := draft(s)
		d.Length, d.Width, d.Height = &length, &width, &height
		d.TotalPrice = nil
	})
}

func (u *UserDialogStateManager) SetCabinetType(ctx context.Context, chatID int64, id string) error {
	return u.update(ctx, chatID, func(s *redis.UserState) {
		d := draft(s)
		d.CabinetType = &id
		d.TotalPrice = nil
	})
}

func (u *UserDialogStateManager) SetMaterial(ctx context.Context, chatID int64, id string) error {
	return u.update(ctx, chatID, func(s *redis.UserState) {
		d := draft(s)
		d.Material = &id
		d.TotalPrice = nil
	})
}

func (u *UserDialogStateManager) SetTotalPrice(ctx context.Context, chatID int64, price int64) error {
	return u.update(ctx, chatID, func(s *redis.UserState) {
		draft(s).TotalPrice = &price
	})
}

func (u *UserDialogStateManager) SetPhoneNumber(ctx context.Context, chatID int64, phone string) error {
	return u.update(ctx, chatID, func(s *redis.UserState) {
		if s.Userdata == nil {
			s.Userdata = &redis.UserData{}
		}
		s.Userdata.PhoneNumber = &phone
	})
}

func (u *UserDialogStateManager) SetUsername(ctx context.Context, chatID int64, username string) error {
	return u.update(ctx, chatID, func(s *redis.UserState) {
		if s.Userdata == nil {
			s.Userdata = &redis.UserData{}
		}
		s.Userdata.Username = &username
	})
}

// ResetDialogState returns the chat to the main menu, keeping the user data.
func (u *UserDialogStateManager) ResetDialogState(ctx context.Context, chatID int64) error {
	prevState, err := u.GetUserDialogState(ctx, chatID)
	if err != nil {
		return fmt.Errorf("GetUserDialogState failed: %w", err)
	}

	return u.setUserDialogState(ctx, chatID, &redis.UserState{
		Step:     StepMainMenu,
		Userdata: prevState.Userdata,
	})
}

func (u *UserDialogStateManager) ClearState(ctx context.Context, chatID int64) error {
	return u.redisStorage.DropUserDialogState(ctx, chatID)
}
