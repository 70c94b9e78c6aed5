package catalog

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/sipcourse-backend/pkg/db/models"
)

// CourseDTO is the public representation of a catalog course.
type CourseDTO struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Domain       string    `json:"domain"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Progress     int       `json:"progress"`
}

// FromModel maps a persisted course into its DTO.
func FromModel(m *models.Course) *CourseDTO {
	if m == nil {
		return nil
	}
	return &CourseDTO{
		ID:           m.ID,
		Slug:         m.Slug,
		Title:        m.Title,
		Description:  m.Description,
		Domain:       m.Domain,
		ThumbnailURL: m.ThumbnailURL,
		Progress:     m.Progress,
	}
}

func fromModels(rows []models.Course) []CourseDTO {
	out := make([]CourseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
