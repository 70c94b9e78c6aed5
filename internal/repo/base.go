package repo

import (
	"context"
	"errors"

	"github.com/angelmondragon/sipcourse-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ErrNoConnection is returned by repositories constructed without a database.
var ErrNoConnection = errors.New("repository has no database connection")

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Ready reports ErrNoConnection when the repository was built without a DB.
func (b Base) Ready() error {
	if b.db == nil {
		return ErrNoConnection
	}
	return nil
}

// Keyset applies newest-first ordering on created_at/id, resumes after the
// cursor when present and fetches one extra row to detect a following page.
func Keyset(query *gorm.DB, cursor *pagination.Cursor, limit int) *gorm.DB {
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	return query.Order("created_at DESC").Order("id DESC").Limit(pagination.LimitWithBuffer(limit))
}
