package assessment

import (
	"time"

	"github.com/google/uuid"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Question is one item of the self-assessment questionnaire.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Answer is a submitted answer label for a question.
type Answer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// ScoredAnswer is an answer together with its derived score.
type ScoredAnswer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
	Score      int    `json:"score"`
}

// Assessment matches the self_assessments table schema. Records are never
// updated once written.
type Assessment struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Answers     []ScoredAnswer `json:"answers"`
	TotalScore  int            `json:"total_score"`
	RiskLevel   RiskLevel      `json:"risk_level"`
	CompletedAt time.Time      `json:"completed_at"`
}

// SubmitResult is returned by Submit.
type SubmitResult struct {
	Assessment *Assessment `json:"assessment"`
	Questions  []Question  `json:"questions"`
}

// HistoryResponse is the API response for GET /self-assessment/history.
type HistoryResponse struct {
	Assessments []Assessment `json:"assessments"`
	Questions   []Question   `json:"questions"`
}

// SubmitRequest is the body of POST /self-assessment.
type SubmitRequest struct {
	Answers []AnswerRequest `json:"answers" validate:"required,dive"`
}

type AnswerRequest struct {
	QuestionID int    `json:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer"`
}
