package domain

import "time"

// ExperimentVariant is one arm of an A/B test with its traffic weight.
type ExperimentVariant struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// Experiment is a named test with its traffic split. Weights need not sum
// to 100; buckets are proportional to the total.
type Experiment struct {
	Name     string              `json:"name"`
	Variants []ExperimentVariant `json:"variants"`
}

// ExperimentAssignment records which arm a user landed in. The assignment
// is a pure function of (experiment, user); rows exist for audit only.
type ExperimentAssignment struct {
	ExperimentName string    `gorm:"column:experiment_name;primaryKey" json:"experiment_name"`
	UserID         uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	Variant        string    `gorm:"column:variant;not null" json:"variant"`
	AssignedAt     time.Time `gorm:"column:assigned_at;autoCreateTime" json:"assigned_at"`
}

func (ExperimentAssignment) TableName() string {
	return "experiment_assignments"
}
