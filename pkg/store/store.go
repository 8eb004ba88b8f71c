// Package store persists dashboards so the HTTP service can serve charts by id.
//
// [MemoryStore] backs tests and single-process deployments. [MongoStore]
// keeps dashboards in a MongoDB collection.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/waterfall/pkg/dashboard"
	wferrors "github.com/matzehuels/waterfall/pkg/errors"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Dashboard is a stored payload.
type Dashboard struct {
	ID        string            `json:"id" bson:"_id"`
	Title     string            `json:"title,omitempty" bson:"title,omitempty"`
	Payload   dashboard.Payload `json:"payload" bson:"payload"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}

// Store is dashboard persistence.
type Store interface {
	// Save inserts or replaces d. A missing ID or CreatedAt is filled in.
	Save(ctx context.Context, d *Dashboard) error
	// Get returns NOT_FOUND for unknown ids.
	Get(ctx context.Context, id string) (*Dashboard, error)
	// List returns the newest dashboards first.
	List(ctx context.Context, limit int) ([]Dashboard, error)
	// Delete returns NOT_FOUND for unknown ids.
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// NewID returns a fresh dashboard id.
func NewID() string { return uuid.NewString() }

// ParseID normalises id. Ids that are not UUIDs cannot exist and report NOT_FOUND.
func ParseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", notFound(id)
	}
	return u.String(), nil
}

func notFound(id string) error {
	return wferrors.New(wferrors.ErrCodeNotFound, "dashboard %q not found", id)
}

// prepare validates d and fills defaults before a write.
func prepare(d *Dashboard) error {
	if err := d.Payload.Validate(); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = NewID()
	} else {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return wferrors.Wrap(wferrors.ErrCodeInvalidInput, err, "invalid dashboard id %q", d.ID)
		}
		d.ID = id.String()
	}
	if d.Title == "" {
		d.Title = d.Payload.Title
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	d.CreatedAt = d.CreatedAt.UTC().Truncate(time.Millisecond)
	return nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
