package out

import (
	"context"
	"time"

	"triage_server/core/domain"
)

// Classifier defines the outbound port for message classification.
// Implementations return an already-normalized classification.
type Classifier interface {
	Classify(ctx context.Context, message string) (*domain.Classification, error)
}

// ClassifierName is implemented by classifiers that report the model they use.
type ClassifierName interface {
	Model() string
}

// ClassificationCache defines the outbound port for cached classifications.
type ClassificationCache interface {
	// Get returns the cached entry; ok is false on a miss.
	Get(ctx context.Context, key string) (c *domain.Classification, ok bool, err error)
	Set(ctx context.Context, key string, c *domain.Classification, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
