package postgres

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yoockh/buuzzer/internal/models"
)

// MockPreferencesRepository is a mock implementation of PreferencesRepository using testify/mock.
type MockPreferencesRepository struct {
	mock.Mock
}

func (m *MockPreferencesRepository) GetByUserID(ctx context.Context, userID string) (*models.PreferencesRecord, error) {
	args := m.Called(ctx, userID)
	rec, _ := args.Get(0).(*models.PreferencesRecord)
	return rec, args.Error(1)
}

func (m *MockPreferencesRepository) Upsert(ctx context.Context, r *models.PreferencesRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
