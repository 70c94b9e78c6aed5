package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/sipcourse-backend/pkg/db"
	"github.com/angelmondragon/sipcourse-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
)

const domainsCacheKey = "catalog:domains"

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	ListByDomain(ctx context.Context, domain string) ([]models.Course, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	Domains(ctx context.Context) ([]string, error)
}

// Cache is the subset of the redis client used for catalog lookups.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// Service exposes the read-only course catalog.
type Service interface {
	ListCourses(ctx context.Context) ([]CourseDTO, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*CourseDTO, error)
	ListCoursesByDomain(ctx context.Context, domain string) ([]CourseDTO, error)
	AvailableDomains(ctx context.Context) ([]string, error)
}

type service struct {
	repo       courseRepository
	cache      Cache
	domainsTTL time.Duration
	logg       *logger.Logger
}

// NewService builds a catalog service. The cache is optional.
func NewService(repo courseRepository, cache Cache, domainsTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, cache: cache, domainsTTL: domainsTTL, logg: logg}, nil
}

func (s *service) ListCourses(ctx context.Context) ([]CourseDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list courses")
	}
	return fromModels(rows), nil
}

func (s *service) GetCourse(ctx context.Context, id uuid.UUID) (*CourseDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course id is required")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	return FromModel(course), nil
}

func (s *service) ListCoursesByDomain(ctx context.Context, domain string) ([]CourseDTO, error) {
	if strings.TrimSpace(domain) == "" {
		return s.ListCourses(ctx)
	}
	rows, err := s.repo.ListByDomain(ctx, domain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list courses by domain")
	}
	return fromModels(rows), nil
}

// AvailableDomains serves the distinct domain list, reading through the cache
// when one is configured. Cache failures fall back to the database.
func (s *service) AvailableDomains(ctx context.Context) ([]string, error) {
	var key string
	if s.cache != nil {
		key = s.cache.CacheKey(domainsCacheKey)
		var cached []string
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.domains.cache_read_failed")
		} else if found {
			return cached, nil
		}
	}

	domains, err := s.repo.Domains(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list domains")
	}
	if domains == nil {
		domains = []string{}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, domains, s.domainsTTL); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.domains.cache_write_failed")
		}
	}
	return domains, nil
}
