package models

// InterviewResponse is one answered turn of the interview.
type InterviewResponse struct {
	QuestionContext string `json:"question_context"`
	Answer          string `json:"answer"`
}
