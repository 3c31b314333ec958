package mysql

import (
	"context"

	statDomain "fivebells/internal/domain/statistic"

	"gorm.io/gorm"
)

type StatisticRepository struct{ db *gorm.DB }

func NewStatisticRepository(db *gorm.DB) *StatisticRepository { return &StatisticRepository{db: db} }

func (r *StatisticRepository) Ensure(ctx context.Context, worldID uint64, name string) (*statDomain.Statistic, error) {
	out := statDomain.Statistic{WorldID: worldID, Name: name}
	res := r.db.WithContext(ctx).
		Where("world_id = ? AND name = ?", worldID, name).
		FirstOrCreate(&out)
	return &out, res.Error
}

func (r *StatisticRepository) Record(ctx context.Context, statisticID uint64, cycle, value int64) error {
	return r.db.WithContext(ctx).Create(&statDomain.Value{
		StatisticID: statisticID,
		Cycle:       cycle,
		Value:       value,
	}).Error
}

func (r *StatisticRepository) Values(ctx context.Context, worldID uint64, name string) ([]statDomain.Value, error) {
	var out []statDomain.Value
	res := r.db.WithContext(ctx).
		Joins("JOIN statistics ON statistics.id = statistic_values.statistic_id").
		Where("statistics.world_id = ? AND statistics.name = ?", worldID, name).
		Order("statistic_values.cycle ASC, statistic_values.id ASC").
		Find(&out)
	return out, res.Error
}
