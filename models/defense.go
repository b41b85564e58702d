package models

import "time"

// Defense lifecycle statuses.
const (
	DefenseStatusQueued     = "queued"
	DefenseStatusGenerating = "generating"
	DefenseStatusReady      = "ready"
	DefenseStatusFailed     = "failed"
)

// Defense is a generated contestation letter for a fine.
type Defense struct {
	ID             string     `bson:"id" json:"id"`
	UserID         string     `bson:"userId" json:"userId"`
	FineID         string     `bson:"fineId" json:"fineId"`
	Status         string     `bson:"status" json:"status"`
	Version        int        `bson:"version" json:"version"`
	LetterMarkdown string     `bson:"letterMarkdown,omitempty" json:"letterMarkdown,omitempty"`
	Citations      []Citation `bson:"citations,omitempty" json:"citations,omitempty"`
	NoCitations    bool       `bson:"noCitations" json:"noCitations"`
	Model          string     `bson:"model,omitempty" json:"model,omitempty"`
	PromptTokens   int32      `bson:"promptTokens,omitempty" json:"promptTokens,omitempty"`
	OutputTokens   int32      `bson:"outputTokens,omitempty" json:"outputTokens,omitempty"`
	FailureReason  string     `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Citation references a legal article chunk used in the letter.
type Citation struct {
	ArticleID string  `bson:"articleId" json:"articleId"`
	Code      string  `bson:"code" json:"code"`
	Article   string  `bson:"article" json:"article"`
	Title     string  `bson:"title,omitempty" json:"title,omitempty"`
	Score     float64 `bson:"score" json:"score"`
}
