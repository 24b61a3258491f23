package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BulkCollection is the slice of *mongo.Collection the sink needs.
type BulkCollection interface {
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
}

// MongoSink wraps each record as an independent insert and flushes a batch
// via an unordered bulk write, so a single malformed document does not block
// the rest of the batch. Failed documents are logged with a truncated sample
// and never retried.
type MongoSink struct {
	coll BulkCollection
}

func NewMongoSink(coll BulkCollection) *MongoSink {
	return &MongoSink{coll: coll}
}

func (s *MongoSink) Write(ctx context.Context, docs []any) (int, error) {
	models := make([]mongo.WriteModel, len(docs))
	for i, doc := range docs {
		models[i] = mongo.NewInsertOneModel().SetDocument(doc)
	}

	res, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) {
			return 0, err
		}

		inserted := len(docs) - len(bwe.WriteErrors)
		if res != nil {
			inserted = int(res.InsertedCount)
		}

		sample := bwe.WriteErrors
		if len(sample) > 3 {
			sample = sample[:3]
		}
		slog.WarnContext(ctx, "some documents failed to insert",
			"failed", len(bwe.WriteErrors),
			"sample", fmt.Sprintf("%.500v", sample),
		)
		return inserted, nil
	}

	return int(res.InsertedCount), nil
}
