package models

type HealthResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// AnswerRequest holds the non-file fields of POST /analyze_answer.
type AnswerRequest struct {
	SessionID    string `form:"session_id" validate:"required"`
	QuestionID   int    `form:"question_id" validate:"gte=0"`
	QuestionText string `form:"question_text" validate:"required"`
}
