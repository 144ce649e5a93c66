package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestionSource identifies which corpus a suggestion came from
type SuggestionSource string

const (
	SourceKnowledgeEntry SuggestionSource = "knowledge_entry"
	SourceDocumentChunk  SuggestionSource = "document_chunk"
)

// ConfidenceTier is a coarse display bucket derived from similarity
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// Suggestion is the ephemeral, query-scoped result returned for a
// ticket question. It is not persisted as such; curated-entry
// suggestions leave a SuggestionRecord behind.
type Suggestion struct {
	ID           string             `json:"id"`
	Source       SuggestionSource   `json:"source"`
	EntryID      primitive.ObjectID `json:"entry_id,omitempty"`
	QuestionText string             `json:"question_text,omitempty"`
	AnswerText   string             `json:"answer_text"`
	SourceTitle  string             `json:"source_title,omitempty"`
	ChunkIndex   int                `json:"chunk_index,omitempty"`
	TotalChunks  int                `json:"total_chunks,omitempty"`
	Similarity   float64            `json:"similarity"`
	Confidence   ConfidenceTier     `json:"confidence"`
	Synthesized  bool               `json:"synthesized,omitempty"`
}

// SuggestionRecord is the durable trace of a suggestion offered for
// a specific ticket. Mutated by view/feedback events, deleted only
// by cascade with its ticket.
type SuggestionRecord struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TicketID          string             `bson:"ticket_id" json:"ticket_id"`
	EntryID           primitive.ObjectID `bson:"entry_id" json:"entry_id"`
	SimilarityPercent int                `bson:"similarity_percent" json:"similarity_percent"`
	RankPosition      int                `bson:"rank_position" json:"rank_position"`
	WasViewed         bool               `bson:"was_viewed" json:"was_viewed"`
	WasHelpful        *bool              `bson:"was_helpful,omitempty" json:"was_helpful,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
}

// FeedbackEvent is append-only; each event causes exactly one counter
// increment on the referenced KnowledgeEntry.
type FeedbackEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EntryID   primitive.ObjectID `bson:"entry_id" json:"entry_id"`
	TicketID  string             `bson:"ticket_id" json:"ticket_id"`
	StudentID string             `bson:"student_id" json:"student_id"`
	IsHelpful bool               `bson:"is_helpful" json:"is_helpful"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
