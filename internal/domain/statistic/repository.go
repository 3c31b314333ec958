package statistic

import "context"

type Repository interface {
	// Ensure returns the named series, creating it on first use.
	Ensure(ctx context.Context, worldID uint64, name string) (*Statistic, error)
	Record(ctx context.Context, statisticID uint64, cycle, value int64) error
	Values(ctx context.Context, worldID uint64, name string) ([]Value, error)
}
