package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"retention-flow-be/pkg/wizard"
)

// FlowSession is one user's in-flight pass through the cancellation modal.
// Sessions live only in memory; a restart loses in-flight wizards, which
// matches the modal resetting on reload.
type FlowSession struct {
	ID        string
	UserID    uuid.UUID
	State     wizard.State
	StartedAt time.Time
	UpdatedAt time.Time
}

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository creates a session store whose entries expire after
// ttl of inactivity. Expired items are purged every 10 minutes.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{cache: cache.New(ttl, 10*time.Minute)}
}

func (r *SessionRepository) Save(session *FlowSession) {
	session.UpdatedAt = time.Now()
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*FlowSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*FlowSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// FindByUser returns the user's newest live session, if any.
func (r *SessionRepository) FindByUser(userID uuid.UUID) (*FlowSession, bool) {
	var newest *FlowSession
	for _, item := range r.cache.Items() {
		s, ok := item.Object.(*FlowSession)
		if !ok || s.UserID != userID {
			continue
		}
		if newest == nil || s.StartedAt.After(newest.StartedAt) {
			newest = s
		}
	}
	return newest, newest != nil
}
