package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/services"
	"github.com/yoockh/buuzzer/internal/utils"
)

type PreferencesHandler struct {
	svc services.PreferencesService
}

func NewPreferencesHandler(svc services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{svc: svc}
}

func (h *PreferencesHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdatePreferencesRequest only touches the fields that are present.
type UpdatePreferencesRequest struct {
	ResumeText        *string                 `json:"resume_text,omitempty"`
	JobDescription    *string                 `json:"job_description,omitempty"`
	YearsOfExperience *int                    `json:"years_of_experience,omitempty"`
	ResponseStyle     *string                 `json:"response_style,omitempty"`
	MaxLines          *int                    `json:"max_lines,omitempty"`
	Examples          *[]models.ExampleAnswer `json:"examples,omitempty"`
}

func (r UpdatePreferencesRequest) apply(p *models.UserPreferences) {
	if r.ResumeText != nil {
		p.ResumeText = *r.ResumeText
	}
	if r.JobDescription != nil {
		p.JobDescription = *r.JobDescription
	}
	if r.YearsOfExperience != nil {
		p.YearsOfExperience = r.YearsOfExperience
	}
	if r.ResponseStyle != nil {
		p.ResponseStyle = *r.ResponseStyle
	}
	if r.MaxLines != nil {
		p.MaxLines = r.MaxLines
	}
	if r.Examples != nil {
		p.Examples = *r.Examples
	}
}

func (h *PreferencesHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PreferencesHandler.Update", "invalid request body", err))
		return
	}

	// missing preferences start blank
	existing, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		if !utils.IsCode(err, utils.CodeNotFound) {
			writeError(c, err)
			return
		}
		existing = &models.UserPreferences{}
	}

	req.apply(existing)

	saved, err := h.svc.Save(c.Request.Context(), userID, *existing)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}
