package memory

import (
	"time"

	"lola-discovery-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// StagingRepository holds sessions that were started but have not yet
// received an accepted answer. Entries expire after the stale threshold, the
// same bound the sweep applies to persisted sessions.
type StagingRepository struct {
	cache *cache.Cache
}

func NewStagingRepository(ttl time.Duration) *StagingRepository {
	c := cache.New(ttl, ttl/2+time.Minute)
	return &StagingRepository{
		cache: c,
	}
}

func (r *StagingRepository) Save(session *entity.Session) {
	r.cache.Set(session.Id.String(), session, cache.DefaultExpiration)
}

func (r *StagingRepository) Get(id uuid.UUID) (*entity.Session, bool) {
	if x, found := r.cache.Get(id.String()); found {
		s := *x.(*entity.Session)
		return &s, true
	}
	return nil, false
}

func (r *StagingRepository) Delete(id uuid.UUID) {
	r.cache.Delete(id.String())
}

// DeleteStale drops staged sessions idle since before cutoff and reports how many.
func (r *StagingRepository) DeleteStale(cutoff time.Time) int64 {
	var removed int64
	for key, item := range r.cache.Items() {
		s := item.Object.(*entity.Session)
		if s.LastActivityAt.Before(cutoff) {
			r.cache.Delete(key)
			removed++
		}
	}
	return removed
}

func (r *StagingRepository) Count() int {
	return r.cache.ItemCount()
}
