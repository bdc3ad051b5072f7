package models

// PromptPair is the rendered system/user prompt for a single generation request.
type PromptPair struct {
	System string `json:"system"`
	User   string `json:"user"`
}
