package models

import "time"

// Fine lifecycle statuses.
const (
	FineStatusUploaded   = "uploaded"
	FineStatusProcessing = "processing"
	FineStatusExtracted  = "extracted"
	FineStatusFailed     = "failed"
)

// Fine is an uploaded traffic-fine notice and everything derived from it.
type Fine struct {
	ID            string     `bson:"id" json:"id"`
	UserID        string     `bson:"userId" json:"userId"`
	Status        string     `bson:"status" json:"status"`
	FileID        string     `bson:"fileId" json:"fileId"` // storage public ID
	FileName      string     `bson:"fileName" json:"fileName"`
	MimeType      string     `bson:"mimeType" json:"mimeType"`
	OCR           *OCRResult `bson:"ocr,omitempty" json:"ocr,omitempty"`
	Extracted     *FineData  `bson:"extracted,omitempty" json:"extracted,omitempty"`
	FailureReason string     `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// OCRResult is the text-extraction outcome for one document.
type OCRResult struct {
	Engine     string     `bson:"engine" json:"engine"` // "pdftext" or "tesseract"
	Tier       int        `bson:"tier" json:"tier"`
	Score      float64    `bson:"score" json:"score"`
	Pages      []PageText `bson:"pages" json:"pages"`
	Text       string     `bson:"text" json:"text"`
	DurationMS int64      `bson:"durationMs" json:"durationMs"`
}

// PageText is the recognized text of a single page.
type PageText struct {
	Page int    `bson:"page" json:"page"`
	Text string `bson:"text" json:"text"`
}

// FineData holds the structured fields parsed from a Portuguese fine notice.
type FineData struct {
	NoticeNumber     string             `bson:"noticeNumber,omitempty" json:"noticeNumber,omitempty"`
	Article          string             `bson:"article,omitempty" json:"article,omitempty"` // Código da Estrada article
	Date             string             `bson:"date,omitempty" json:"date,omitempty"`       // 2006-01-02
	Time             string             `bson:"time,omitempty" json:"time,omitempty"`       // 15:04
	Location         string             `bson:"location,omitempty" json:"location,omitempty"`
	Plate            string             `bson:"plate,omitempty" json:"plate,omitempty"`
	AmountCents      int64              `bson:"amountCents,omitempty" json:"amountCents,omitempty"`
	Authority        string             `bson:"authority,omitempty" json:"authority,omitempty"`
	ResponseDeadline int                `bson:"responseDeadlineDays,omitempty" json:"responseDeadlineDays,omitempty"`
	Points           int                `bson:"points,omitempty" json:"points,omitempty"`
	FieldConfidence  map[string]float64 `bson:"fieldConfidence,omitempty" json:"fieldConfidence,omitempty"`
	Confidence       float64            `bson:"confidence" json:"confidence"`
	NeedsReview      bool               `bson:"needsReview" json:"needsReview"`
}

// FineCorrection is a manual fix-up of extracted fields.
type FineCorrection struct {
	NoticeNumber *string `json:"noticeNumber,omitempty"`
	Article      *string `json:"article,omitempty"`
	Date         *string `json:"date,omitempty"`
	Time         *string `json:"time,omitempty"`
	Location     *string `json:"location,omitempty"`
	Plate        *string `json:"plate,omitempty"`
	AmountCents  *int64  `json:"amountCents,omitempty"`
	Authority    *string `json:"authority,omitempty"`
}
