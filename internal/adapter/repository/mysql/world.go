package mysql

import (
	"context"

	worldDomain "fivebells/internal/domain/world"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorldRepository struct{ db *gorm.DB }

func NewWorldRepository(db *gorm.DB) *WorldRepository { return &WorldRepository{db: db} }

func (r *WorldRepository) Create(ctx context.Context, w *worldDomain.World) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WorldRepository) GetByID(ctx context.Context, id uint64) (*worldDomain.World, error) {
	var out worldDomain.World
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *WorldRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*worldDomain.World, error) {
	var out worldDomain.World
	res := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&out, id)
	return &out, res.Error
}

func (r *WorldRepository) List(ctx context.Context) ([]worldDomain.World, error) {
	var out []worldDomain.World
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *WorldRepository) SetCycle(ctx context.Context, id uint64, cycle int64) error {
	return r.db.WithContext(ctx).
		Model(&worldDomain.World{}).
		Where("id = ?", id).
		Update("current_cycle", cycle).Error
}

func (r *WorldRepository) SetHalted(ctx context.Context, id uint64, halted bool, reason string) error {
	return r.db.WithContext(ctx).
		Model(&worldDomain.World{}).
		Where("id = ?", id).
		Updates(map[string]any{"halted": halted, "halt_reason": reason}).Error
}
