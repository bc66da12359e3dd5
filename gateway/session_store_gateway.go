package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"search-storefront/domain"
	"search-storefront/driver"
)

const sessionKeyPrefix = "session:"

type SessionDriver interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// SessionStoreGateway serializes search sessions as JSON under "session:<id>".
type SessionStoreGateway struct {
	driver SessionDriver
	now    func() time.Time
}

func NewSessionStoreGateway(driver SessionDriver) *SessionStoreGateway {
	return &SessionStoreGateway{
		driver: driver,
		now:    time.Now,
	}
}

func (g *SessionStoreGateway) Load(ctx context.Context, id string) (*domain.SearchSession, error) {
	raw, err := g.driver.Get(ctx, sessionKeyPrefix+id)
	if errors.Is(err, driver.ErrKeyNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, &domain.SessionStoreError{
			Op:  "Load",
			Err: err.Error(),
		}
	}

	var session domain.SearchSession
	if err := json.Unmarshal(raw, &session); err != nil {
		// A payload from an older layout is treated as absent.
		return nil, domain.ErrSessionNotFound
	}
	if session.ID != id {
		return nil, domain.ErrSessionNotFound
	}
	if session.Refinements == nil {
		session.Refinements = map[string][]string{}
	}

	return &session, nil
}

func (g *SessionStoreGateway) Save(ctx context.Context, session *domain.SearchSession) error {
	session.UpdatedAt = g.now().UTC()

	raw, err := json.Marshal(session)
	if err != nil {
		return &domain.SessionStoreError{
			Op:  "Save",
			Err: "failed to encode session: " + err.Error(),
		}
	}

	if err := g.driver.Set(ctx, sessionKeyPrefix+session.ID, raw); err != nil {
		return &domain.SessionStoreError{
			Op:  "Save",
			Err: err.Error(),
		}
	}

	return nil
}
