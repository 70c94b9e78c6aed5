package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/sipcourse-backend/internal/repo"
	"github.com/angelmondragon/sipcourse-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the course catalog.
type Repository struct {
	repo.Base
}

// NewRepository binds a catalog repository to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns every course ordered by title.
func (r *Repository) List(ctx context.Context) ([]models.Course, error) {
	var rows []models.Course
	if err := r.DB(ctx).Order("title ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByDomain returns the courses of one domain, matched case-insensitively.
func (r *Repository) ListByDomain(ctx context.Context, domain string) ([]models.Course, error) {
	var rows []models.Course
	err := r.DB(ctx).
		Where("LOWER(domain) = ?", strings.ToLower(strings.TrimSpace(domain))).
		Order("title ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single course.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := r.DB(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// Domains returns the distinct course domains in alphabetical order.
func (r *Repository) Domains(ctx context.Context) ([]string, error) {
	var domains []string
	err := r.DB(ctx).
		Model(&models.Course{}).
		Distinct("domain").
		Order("domain ASC").
		Pluck("domain", &domains).
		Error
	if err != nil {
		return nil, err
	}
	return domains, nil
}
