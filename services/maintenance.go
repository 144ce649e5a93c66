package services

import (
	"context"
	"time"

	"helpdesk-suggestion-engine/internal/logger"

	"github.com/go-co-op/gocron"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MaintenanceService sweeps orphaned document chunks left behind by
// aborted ingestions. A document whose actual chunk count disagrees
// with its stamped total_chunks, and whose newest chunk is old enough
// that no ingestion can still be running, is removed so a retry
// starts clean.
type MaintenanceService struct {
	chunks    *mongo.Collection
	scheduler *gocron.Scheduler
	minAge    time.Duration
}

func NewMaintenanceService(chunks *mongo.Collection, sweepInterval, minAge time.Duration) *MaintenanceService {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	ms := &MaintenanceService{
		chunks:    chunks,
		scheduler: s,
		minAge:    minAge,
	}

	s.Every(sweepInterval).Tag("orphan-sweep").Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := ms.SweepOrphanedChunks(ctx); err != nil {
			logger.Error("Orphan chunk sweep failed", "error", err)
		}
	})

	return ms
}

func (ms *MaintenanceService) Start() {
	ms.scheduler.StartAsync()
}

func (ms *MaintenanceService) Stop() {
	ms.scheduler.Stop()
}

// SweepOrphanedChunks deletes stale partial ingests
func (ms *MaintenanceService) SweepOrphanedChunks(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$source_title"},
			{Key: "actual", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "expected", Value: bson.D{{Key: "$max", Value: "$metadata.total_chunks"}}},
			{Key: "newest", Value: bson.D{{Key: "$max", Value: "$created_at"}}},
		}}},
	}

	cursor, err := ms.chunks.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	cutoff := time.Now().Add(-ms.minAge)
	swept := 0

	for cursor.Next(ctx) {
		var row struct {
			Title    string    `bson:"_id"`
			Actual   int       `bson:"actual"`
			Expected int       `bson:"expected"`
			Newest   time.Time `bson:"newest"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}

		if row.Expected == 0 || row.Actual == row.Expected || row.Newest.After(cutoff) {
			continue
		}

		res, err := ms.chunks.DeleteMany(ctx, bson.M{"source_title": row.Title})
		if err != nil {
			logger.Warn("Failed to sweep orphaned chunks", "title", row.Title, "error", err)
			continue
		}

		swept++
		logger.Info("Swept orphaned document chunks",
			"title", row.Title,
			"deleted", res.DeletedCount,
			"expected_chunks", row.Expected,
			"actual_chunks", row.Actual)
	}

	if swept > 0 {
		logger.Info("Orphan chunk sweep completed", "documents", swept)
	}
	return cursor.Err()
}
