// Package memory is an in-process implementation of the repositories, used by
// the test suites and by the server when DB_DRIVER=memory.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
)

// Store holds every table behind a single lock. Values are deep-copied on the
// way in and out so callers never share memory with the store.
type Store struct {
	mu            sync.RWMutex
	vendors       map[uuid.UUID]*models.Vendor
	products      map[uuid.UUID]*models.Product
	deletedSlugs  map[string]uuid.UUID
	reviews       map[uuid.UUID]*models.Review
	responses     map[uuid.UUID]*models.ReviewResponse
	auditLogs     []*models.AuditLog
	notifications []*models.Notification

	now       func() time.Time
	lastStamp time.Time
}

func NewStore() *Store {
	return &Store{
		vendors:      make(map[uuid.UUID]*models.Vendor),
		products:     make(map[uuid.UUID]*models.Product),
		deletedSlugs: make(map[string]uuid.UUID),
		reviews:      make(map[uuid.UUID]*models.Review),
		responses:    make(map[uuid.UUID]*models.ReviewResponse),
		now:          time.Now,
	}
}

// Repositories returns repository views backed by this store.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Vendors:       &vendorRepository{s: s},
		Products:      &productRepository{s: s},
		Reviews:       &reviewRepository{s: s},
		AuditLogs:     &auditLogRepository{s: s},
		Notifications: &notificationRepository{s: s},
	}
}

// stamp sets timestamps from a strictly increasing clock so listing order is stable.
func (s *Store) stamp(b *models.BaseModel, creating bool) {
	now := s.now()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = now
	if creating {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
	}
	b.UpdatedAt = now
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// sortByCreated orders newest first unless asc is requested.
func sortByCreated[T any](items []T, created func(T) time.Time, order string) {
	sort.SliceStable(items, func(i, j int) bool {
		if order == "asc" {
			return created(items[i]).Before(created(items[j]))
		}
		return created(items[i]).After(created(items[j]))
	})
}
