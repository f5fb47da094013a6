// Package vectorutils is the vector store utility package
package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/groundedhq/grounded/pkg/vector"
	"github.com/groundedhq/grounded/pkg/vector/memory"
	"github.com/groundedhq/grounded/pkg/vector/pgvector"
	"github.com/groundedhq/grounded/pkg/vector/sqlitevec"
)

type NewStoreOpts struct {
	ProviderType string
	Target       string
	Metric       string
	Dimensions   uint
	Logger       *zap.Logger
}

// NewStore builds a vector store from configuration. Target is a database
// path for sqlite-vec and a connection string for postgres; the in-memory
// provider ignores it.
func NewStore(ctx context.Context, o *NewStoreOpts) (vector.Store, error) {
	metric, err := vector.ParseMetric(o.Metric)
	if err != nil {
		return nil, err
	}

	switch o.ProviderType {
	case "", "memory":
		return memory.NewStore(memory.Config{
			Metric: metric,
		}), nil
	case "sqlite-vec":
		return sqlitevec.NewStore(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
			Metric:     metric,
		}, o.Logger)
	case "postgres":
		return pgvector.NewStore(ctx, pgvector.Config{
			ConnStr:    o.Target,
			Dimensions: o.Dimensions,
			Metric:     metric,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
