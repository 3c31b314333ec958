package statistic

import (
	"time"
)

// Table: statistics. One named series per world.
type Statistic struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WorldID   uint64    `gorm:"column:world_id;not null;uniqueIndex:ux_statistics_world_name" json:"world_id"`
	Name      string    `gorm:"column:name;size:128;not null;uniqueIndex:ux_statistics_world_name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Statistic) TableName() string { return "statistics" }

// Table: statistic_values
type Value struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StatisticID uint64    `gorm:"column:statistic_id;not null;index" json:"statistic_id"`
	Cycle       int64     `gorm:"column:cycle;not null" json:"cycle"`
	Value       int64     `gorm:"column:value;not null" json:"value"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Value) TableName() string { return "statistic_values" }
