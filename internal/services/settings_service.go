package services

import (
	"context"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/workspace"
)

// SettingsService handles study settings
type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, update models.SettingsUpdate) (models.Settings, error)
}

type settingsService struct {
	ws *workspace.Workspace
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(ws *workspace.Workspace) SettingsService {
	return &settingsService{ws: ws}
}

func (s *settingsService) Get(ctx context.Context) (models.Settings, error) {
	var out models.Settings
	_ = s.ws.View(func(st *workspace.State) error {
		out = st.Settings
		return nil
	})
	return out, nil
}

func (s *settingsService) Update(ctx context.Context, update models.SettingsUpdate) (models.Settings, error) {
	log := logger.FromContext(ctx)

	if err := validateStruct(update); err != nil {
		log.Debug("rejected settings update: %v", err)
		return models.Settings{}, err
	}

	var out models.Settings
	err := s.ws.Update(ctx, func(st *workspace.State) error {
		st.Settings.DailyNewCards = update.DailyNewCards
		st.Settings.CardsPerSession = update.CardsPerSession
		if update.LearningLanguage != nil {
			st.Settings.LearningLanguage = *update.LearningLanguage
		}
		if update.NativeLanguage != nil {
			st.Settings.NativeLanguage = *update.NativeLanguage
		}
		if update.DailyLimit != nil {
			st.Settings.DailyLimit = *update.DailyLimit
		}
		out = st.Settings
		return nil
	})
	if err != nil {
		log.Error("failed to update settings: %v", err)
		return models.Settings{}, err
	}
	log.Info("settings updated: daily_new_cards=%d, cards_per_session=%d, languages=%s/%s",
		out.DailyNewCards, out.CardsPerSession, out.LearningLanguage, out.NativeLanguage)
	return out, nil
}
