package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KnowledgeEntry is an instructor-authored question/answer pair.
// The embedding is derived from the question (and answer) text at
// create/update time; counters are only ever moved by $inc updates
// from the feedback loop.
type KnowledgeEntry struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionText    string             `bson:"question_text" json:"question_text"`
	AnswerText      string             `bson:"answer_text" json:"answer_text"`
	Embedding       []float32          `bson:"embedding,omitempty" json:"-"`
	CourseScope     string             `bson:"course_scope,omitempty" json:"course_scope,omitempty"`
	Tags            []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	ViewCount       int64              `bson:"view_count" json:"view_count"`
	HelpfulCount    int64              `bson:"helpful_count" json:"helpful_count"`
	NotHelpfulCount int64              `bson:"not_helpful_count" json:"not_helpful_count"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// HelpfulnessPercent returns the share of helpful ratings, 0 when unrated
func (e *KnowledgeEntry) HelpfulnessPercent() float64 {
	total := e.HelpfulCount + e.NotHelpfulCount
	if total == 0 {
		return 0
	}
	return float64(e.HelpfulCount) / float64(total) * 100
}
