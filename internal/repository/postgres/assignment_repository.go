package postgres

import (
	"context"
	"fmt"
	"homeMatch/business/experiment"
	"homeMatch/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

var _ experiment.AssignmentAudit = (*AssignmentRepository)(nil)

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// Save records the assignment for audit. The allocator is deterministic,
// so re-inserting the same (experiment, user) pair is a no-op.
func (r *AssignmentRepository) Save(ctx context.Context, assignment domain.ExperimentAssignment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "experiment_name"}, {Name: "user_id"}},
			DoNothing: true,
		},
	).Create(&assignment).Error; err != nil {
		return fmt.Errorf("failed to save experiment assignment: %w", err)
	}

	return nil
}
