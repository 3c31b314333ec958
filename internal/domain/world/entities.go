package world

import (
	"errors"
	"fmt"
	"time"
)

var ErrSimulationHalted = errors.New("simulation halted")

// Table: worlds
type World struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"column:name;size:64;not null;uniqueIndex" json:"name"`
	CurrentCycle  int64     `gorm:"column:current_cycle;not null;default:0" json:"current_cycle"`
	CycleStepSize int       `gorm:"column:cycle_step_size;not null;default:1" json:"cycle_step_size"`
	Halted        bool      `gorm:"column:halted;not null;default:false" json:"halted"`
	HaltReason    string    `gorm:"column:halt_reason;size:512" json:"halt_reason,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (World) TableName() string { return "worlds" }

func (w *World) Cycle() int64 { return w.CurrentCycle }

// HaltError is returned by an evaluation that halted the world. It matches
// both ErrSimulationHalted and the error that caused the halt.
type HaltError struct {
	WorldID uint64
	Cycle   int64
	Err     error
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("world %d halted at cycle %d: %v", e.WorldID, e.Cycle, e.Err)
}

func (e *HaltError) Unwrap() []error { return []error{ErrSimulationHalted, e.Err} }
