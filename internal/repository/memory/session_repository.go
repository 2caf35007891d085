package memory

import (
	"sync"
	"time"

	"docworkspace/internal/client"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps one client session per user, dropping sessions
// that stay idle past the TTL.
type SessionRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*client.Session); ok {
			s.Close()
		}
	})
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(s *client.Session) {
	r.cache.Set(s.UserID, s, cache.DefaultExpiration)
}

// Get returns the user's session and refreshes its expiry.
func (r *SessionRepository) Get(userID string) (*client.Session, bool) {
	if x, found := r.cache.Get(userID); found {
		s := x.(*client.Session)
		r.cache.Set(userID, s, cache.DefaultExpiration)
		return s, true
	}
	return nil, false
}

// GetOrCreate returns the user's session, building it with create when absent.
func (r *SessionRepository) GetOrCreate(userID string, create func(userID string) *client.Session) *client.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.Get(userID); ok {
		return s
	}
	s := create(userID)
	r.Save(s)
	return s
}

func (r *SessionRepository) Delete(userID string) {
	r.cache.Delete(userID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
