package models

const (
	DefaultDailyNewCards    = 20
	DefaultCardsPerSession  = 3
	DefaultDailyLimit       = 20
	DefaultLearningLanguage = "ja"
	DefaultNativeLanguage   = "en"
)

// Settings is the per-profile study configuration.
type Settings struct {
	DailyNewCards    int    `json:"daily_new_cards"`
	CardsPerSession  int    `json:"cards_per_session"`
	LearningLanguage string `json:"learning_language"`
	NativeLanguage   string `json:"native_language"`

	// Soft daily review limit and the bookkeeping for going past it.
	DailyLimit      int    `json:"daily_limit"`
	ExtraCardsToday int    `json:"extra_cards_today"`
	LastStudyDate   string `json:"last_study_date,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		DailyNewCards:    DefaultDailyNewCards,
		CardsPerSession:  DefaultCardsPerSession,
		LearningLanguage: DefaultLearningLanguage,
		NativeLanguage:   DefaultNativeLanguage,
		DailyLimit:       DefaultDailyLimit,
	}
}

// SettingsUpdate carries an explicit settings change. Nil language fields
// leave the current value untouched.
type SettingsUpdate struct {
	DailyNewCards    int     `json:"daily_new_cards" validate:"gt=0"`
	CardsPerSession  int     `json:"cards_per_session" validate:"gt=0"`
	LearningLanguage *string `json:"learning_language,omitempty" validate:"omitempty,min=2,max=16"`
	NativeLanguage   *string `json:"native_language,omitempty" validate:"omitempty,min=2,max=16"`
	DailyLimit       *int    `json:"daily_limit,omitempty" validate:"omitempty,gt=0"`
}

// DailyLimit is the soft-limit status shown before a study session.
type DailyLimit struct {
	LimitReached bool `json:"limit_reached"`
	TotalToday   int  `json:"total_today"`
	DailyLimit   int  `json:"daily_limit"`
	ExtraCards   int  `json:"extra_cards"`
}
