package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/buuzzer/internal/api/middleware"
	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/services"
	"github.com/yoockh/buuzzer/internal/utils"
)

const testUserID = "u-1"

// fakeAuth stands in for JWTAuth.
func fakeAuth(userID, token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.CtxUserID, userID)
			c.Set(middleware.CtxAccessToken, token)
		}
		c.Next()
	}
}

func preferencesEngine(svc services.PreferencesService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewPreferencesHandler(svc)
	r.Use(fakeAuth(userID, "tok"))
	r.GET("/preferences/me", h.Me)
	r.PUT("/preferences/update", h.Update)
	return r
}

func intPtr(v int) *int { return &v }

func TestPreferencesHandler_Me(t *testing.T) {
	svc := &services.MockPreferencesService{}
	svc.On("Get", mock.Anything, testUserID).Return(&models.UserPreferences{ResumeText: "resume", MaxLines: intPtr(10)}, nil).Once()

	w := httptest.NewRecorder()
	preferencesEngine(svc, testUserID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/preferences/me", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got models.UserPreferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "resume", got.ResumeText)
	assert.Equal(t, 10, *got.MaxLines)
	svc.AssertExpectations(t)
}

func TestPreferencesHandler_MeNotFound(t *testing.T) {
	svc := &services.MockPreferencesService{}
	svc.On("Get", mock.Anything, testUserID).Return(nil, utils.E(utils.CodeNotFound, "PreferencesService.Get", "preferences not found", utils.ErrNotFound)).Once()

	w := httptest.NewRecorder()
	preferencesEngine(svc, testUserID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/preferences/me", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":"NOT_FOUND","message":"preferences not found"}`, w.Body.String())
}

func TestPreferencesHandler_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	preferencesEngine(&services.MockPreferencesService{}, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/preferences/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPreferencesHandler_UpdateMergesPartialFields(t *testing.T) {
	svc := &services.MockPreferencesService{}
	svc.On("Get", mock.Anything, testUserID).Return(&models.UserPreferences{
		ResumeText:     "old resume",
		JobDescription: "jd",
		MaxLines:       intPtr(10),
	}, nil).Once()
	svc.On("Save", mock.Anything, testUserID, mock.MatchedBy(func(p models.UserPreferences) bool {
		return p.ResumeText == "new resume" && p.JobDescription == "jd" && *p.MaxLines == 25 &&
			len(p.Examples) == 1 && p.Examples[0].Question == "q"
	})).Return(&models.UserPreferences{ResumeText: "new resume"}, nil).Once()

	body := `{"resume_text":"new resume","max_lines":25,"examples":[{"question":"q","answer":"a"}]}`
	w := httptest.NewRecorder()
	preferencesEngine(svc, testUserID).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/preferences/update", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestPreferencesHandler_UpdateCreatesWhenMissing(t *testing.T) {
	svc := &services.MockPreferencesService{}
	svc.On("Get", mock.Anything, testUserID).Return(nil, utils.E(utils.CodeNotFound, "PreferencesService.Get", "preferences not found", nil)).Once()
	svc.On("Save", mock.Anything, testUserID, models.UserPreferences{ResponseStyle: "casual"}).
		Return(&models.UserPreferences{ResponseStyle: "casual"}, nil).Once()

	w := httptest.NewRecorder()
	preferencesEngine(svc, testUserID).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/preferences/update", strings.NewReader(`{"response_style":"casual"}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestPreferencesHandler_UpdateRejectsBadBody(t *testing.T) {
	w := httptest.NewRecorder()
	preferencesEngine(&services.MockPreferencesService{}, testUserID).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/preferences/update", strings.NewReader(`{"max_lines":"many"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ARGUMENT")
}
