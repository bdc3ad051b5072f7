package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yoockh/buuzzer/internal/models"
)

// MockPreferencesService is a mock implementation of PreferencesService using testify/mock.
type MockPreferencesService struct {
	mock.Mock
}

func (m *MockPreferencesService) Get(ctx context.Context, userID string) (*models.UserPreferences, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*models.UserPreferences)
	return p, args.Error(1)
}

func (m *MockPreferencesService) Save(ctx context.Context, userID string, p models.UserPreferences) (*models.UserPreferences, error) {
	args := m.Called(ctx, userID, p)
	out, _ := args.Get(0).(*models.UserPreferences)
	return out, args.Error(1)
}
