package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentChunk is a denormalized slice of a reference document,
// the unit of embedding and $vectorSearch retrieval. Chunks are
// immutable once embedded; re-ingesting a document deletes and
// re-creates the whole batch. chunk_index is contiguous from 0
// within a source_title.
type DocumentChunk struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	SourceTitle string                 `bson:"source_title" json:"source_title"`
	ChunkIndex  int                    `bson:"chunk_index" json:"chunk_index"`
	Content     string                 `bson:"content" json:"content"`
	Embedding   []float32              `bson:"embedding" json:"-"`
	Metadata    map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"created_at"`
}

// Metadata keys stamped by the ingestion pipeline
const (
	MetaTotalChunks = "total_chunks"
	MetaChunkSize   = "chunk_size"
)
