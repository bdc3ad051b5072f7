package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/buuzzer/internal/cache"
	"github.com/yoockh/buuzzer/internal/models"
	pgrepo "github.com/yoockh/buuzzer/internal/repositories/postgres"
	"github.com/yoockh/buuzzer/internal/utils"
)

type PreferencesService interface {
	Get(ctx context.Context, userID string) (*models.UserPreferences, error)
	Save(ctx context.Context, userID string, p models.UserPreferences) (*models.UserPreferences, error)
}

type preferencesService struct {
	prefs pgrepo.PreferencesRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewPreferencesService reads through c when it is non-nil.
func NewPreferencesService(prefs pgrepo.PreferencesRepository, c cache.Cache, ttl time.Duration) PreferencesService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &preferencesService{prefs: prefs, cache: c, ttl: ttl}
}

func (s *preferencesService) Get(ctx context.Context, userID string) (*models.UserPreferences, error) {
	const op = "PreferencesService.Get"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	key := cache.PreferencesKey(userID)
	if s.cache != nil {
		var cached models.UserPreferences
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	rec, err := s.prefs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "preferences not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get preferences", err)
	}

	p, err := rec.Preferences()
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "stored preferences are corrupt", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, p, s.ttl)
	}
	return &p, nil
}

func (s *preferencesService) Save(ctx context.Context, userID string, p models.UserPreferences) (*models.UserPreferences, error) {
	const op = "PreferencesService.Save"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if msg := validatePreferences(p); msg != "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, msg, nil)
	}

	rec, err := models.NewPreferencesRecord(userID, p)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode preferences", err)
	}
	rec.UpdatedAt = time.Now().UTC()

	if err := s.prefs.Upsert(ctx, rec); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to upsert preferences", err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, cache.PreferencesKey(userID))
	}
	return &p, nil
}

func validatePreferences(p models.UserPreferences) string {
	if p.MaxLines != nil && *p.MaxLines < 0 {
		return "max_lines must be >= 0"
	}
	if p.YearsOfExperience != nil && *p.YearsOfExperience < 0 {
		return "years_of_experience must be >= 0"
	}
	for _, ex := range p.Examples {
		if strings.TrimSpace(ex.Question) == "" || strings.TrimSpace(ex.Answer) == "" {
			return "examples need both question and answer"
		}
	}
	return ""
}
