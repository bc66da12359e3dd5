package port

import (
	"context"

	"search-storefront/domain"
)

// SessionStore persists search sessions between requests.
// Load returns domain.ErrSessionNotFound for unknown IDs.
type SessionStore interface {
	Load(ctx context.Context, id string) (*domain.SearchSession, error)
	Save(ctx context.Context, session *domain.SearchSession) error
}
