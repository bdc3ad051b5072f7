package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type PreferencesRecord struct {
	UserID         string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	ResumeText     string `gorm:"column:resume_text;type:text" json:"resume_text"`
	JobDescription string `gorm:"column:job_description;type:text" json:"job_description"`

	YearsOfExperience *int   `gorm:"column:years_of_experience;type:integer" json:"years_of_experience,omitempty"`
	ResponseStyle     string `gorm:"column:response_style;type:text" json:"response_style"`
	MaxLines          *int   `gorm:"column:max_lines;type:integer" json:"max_lines,omitempty"`

	// JSONB array of ExampleAnswer
	Examples datatypes.JSON `gorm:"column:examples;type:jsonb" json:"examples"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (PreferencesRecord) TableName() string { return "user_preferences" }

func NewPreferencesRecord(userID string, p UserPreferences) (*PreferencesRecord, error) {
	examples := p.Examples
	if examples == nil {
		examples = []ExampleAnswer{}
	}
	raw, err := json.Marshal(examples)
	if err != nil {
		return nil, err
	}
	return &PreferencesRecord{
		UserID:            userID,
		ResumeText:        p.ResumeText,
		JobDescription:    p.JobDescription,
		YearsOfExperience: p.YearsOfExperience,
		ResponseStyle:     p.ResponseStyle,
		MaxLines:          p.MaxLines,
		Examples:          datatypes.JSON(raw),
	}, nil
}

func (r *PreferencesRecord) Preferences() (UserPreferences, error) {
	out := UserPreferences{
		ResumeText:        r.ResumeText,
		JobDescription:    r.JobDescription,
		YearsOfExperience: r.YearsOfExperience,
		ResponseStyle:     r.ResponseStyle,
		MaxLines:          r.MaxLines,
	}
	if len(r.Examples) > 0 {
		if err := json.Unmarshal(r.Examples, &out.Examples); err != nil {
			return UserPreferences{}, err
		}
	}
	return out, nil
}
