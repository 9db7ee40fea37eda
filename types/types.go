package types

import (
	"time"

	"github.com/google/uuid"
)

// Document is one ingested source (an uploaded PDF or a scraped URL).
// (UserID, Source) is the natural key: re-ingesting the same source
// overwrites content, file bytes and embedding in place.
type Document struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Source      string    `json:"source"`
	Content     string    `json:"content"`
	FileContent []byte    `json:"-"`
	Embedding   []float32 `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatEntry is one question/answer exchange. DocumentName is denormalized
// so history stays readable after the document is overwritten or removed.
type ChatEntry struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	DocumentID   uuid.UUID `json:"document_id"`
	DocumentName string    `json:"document_name"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	CreatedAt    time.Time `json:"created_at"`
}

type IngestResponse struct {
	Stored     bool      `json:"stored"`
	DocumentID uuid.UUID `json:"document_id,omitempty"`
	Source     string    `json:"source,omitempty"`
	Message    string    `json:"message,omitempty"`
}

type AnswerResponse struct {
	Answer     string    `json:"answer"`
	DocumentID uuid.UUID `json:"document_id"`
	Timestamp  time.Time `json:"timestamp"`
}

type SourcesResponse struct {
	Sources []string `json:"sources"`
	Current string   `json:"current,omitempty"`
}
