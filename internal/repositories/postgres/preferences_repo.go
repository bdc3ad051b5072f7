package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferencesRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.PreferencesRecord, error)
	Upsert(ctx context.Context, r *models.PreferencesRecord) error
}

type preferencesRepo struct {
	db *gorm.DB
}

func NewPreferencesRepo(db *gorm.DB) PreferencesRepository {
	return &preferencesRepo{db: db}
}

func (r *preferencesRepo) GetByUserID(ctx context.Context, userID string) (*models.PreferencesRecord, error) {
	var rec models.PreferencesRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *preferencesRepo) Upsert(ctx context.Context, rec *models.PreferencesRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"resume_text", "job_description", "years_of_experience",
				"response_style", "max_lines", "examples", "updated_at",
			}),
		}).
		Create(rec).Error
}
