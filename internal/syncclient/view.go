package syncclient

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"lunch-order/internal/domain"
)

// View is the client's local copy of the notification list, keyed by id.
// Merging the same batch twice or batches in any order gives the same view.
type View struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Notification
}

func NewView() *View {
	return &View{items: map[uuid.UUID]domain.Notification{}}
}

// Merge overwrites entries by id with the incoming copies.
func (v *View) Merge(batch []domain.Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, n := range batch {
		v.items[n.ID] = n
	}
}

// Replace swaps the whole view for an authoritative list, such as a poll
// result.
func (v *View) Replace(list []domain.Notification) {
	items := make(map[uuid.UUID]domain.Notification, len(list))
	for _, n := range list {
		items[n.ID] = n
	}

	v.mu.Lock()
	v.items = items
	v.mu.Unlock()
}

// Items returns the view newest first. Equal timestamps are ordered by id so
// the result is deterministic.
func (v *View) Items() []domain.Notification {
	v.mu.RLock()
	out := make([]domain.Notification, 0, len(v.items))
	for _, n := range v.items {
		out = append(out, n)
	}
	v.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out
}

func (v *View) UnreadCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	count := 0
	for _, n := range v.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}
