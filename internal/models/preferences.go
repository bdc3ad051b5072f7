package models

// ExampleAnswer is a sample question/answer pair the candidate supplied to steer tone.
type ExampleAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// UserPreferences is the candidate context used to compose a prompt.
// Nil pointers mean "not specified".
type UserPreferences struct {
	ResumeText        string          `json:"resume_text"`
	JobDescription    string          `json:"job_description"`
	YearsOfExperience *int            `json:"years_of_experience,omitempty"`
	ResponseStyle     string          `json:"response_style,omitempty"`
	MaxLines          *int            `json:"max_lines,omitempty"`
	Examples          []ExampleAnswer `json:"examples,omitempty"`
}
