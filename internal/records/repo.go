package records

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/sipcourse-backend/internal/repo"
	"github.com/angelmondragon/sipcourse-backend/pkg/db/models"
	"github.com/angelmondragon/sipcourse-backend/pkg/pagination"
)

// Repository persists plan records. Rows are insert-only.
type Repository struct {
	repo.Base
}

// NewRepository binds a plan record repository to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a record.
func (r *Repository) Create(ctx context.Context, record *models.PlanRecord) error {
	return r.DB(ctx).Create(record).Error
}

// ListByOwner returns up to limit records after cursor plus one lookahead row.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.PlanRecord, error) {
	var rows []models.PlanRecord
	query := r.DB(ctx).Model(&models.PlanRecord{}).Where("owner_id = ?", ownerID)
	if err := repo.Keyset(query, cursor, limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAllByOwner returns every record of the owner, newest first.
func (r *Repository) ListAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.PlanRecord, error) {
	var rows []models.PlanRecord
	err := r.DB(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one record scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.PlanRecord, error) {
	var row models.PlanRecord
	if err := r.DB(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
