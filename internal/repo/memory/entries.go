package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/journal/internal/domain/entry"
	"github.com/geocoder89/journal/internal/domain/prompt"
	"github.com/geocoder89/journal/internal/domain/user"
)

type EntriesRepo struct {
	s *Store
}

func (r *EntriesRepo) Create(ctx context.Context, e entry.Entry) (entry.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.prompts[e.PromptID]; !ok {
		return entry.Entry{}, prompt.ErrNotFound
	}
	if _, ok := r.s.users[e.OwnerID]; !ok {
		return entry.Entry{}, user.ErrNotFound
	}

	r.s.nextEntryID++
	e.ID = r.s.nextEntryID
	e.CreatedAt = entry.Stamp(e.CreatedAt)
	r.s.entries[e.ID] = e

	return e, nil
}

func (r *EntriesRepo) GetOwned(ctx context.Context, id, ownerID int64) (entry.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.entries[id]
	if !ok || e.OwnerID != ownerID {
		return entry.Entry{}, entry.ErrNotFound
	}
	return e, nil
}

// UpdateText checks ownership and the edit window under the write lock, so
// the check and the write cannot interleave with another update.
func (r *EntriesRepo) UpdateText(ctx context.Context, id, ownerID int64, text string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.entries[id]
	if !ok || e.OwnerID != ownerID {
		return entry.ErrNotFound
	}
	if !entry.EditableAt(e.CreatedAt, now) {
		return entry.ErrEditWindowClosed
	}

	e.Text = text
	r.s.entries[id] = e

	return nil
}

func (r *EntriesRepo) List(ctx context.Context, f entry.ListFilter) ([]entry.View, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	views := r.matchingLocked(f)

	sort.Slice(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID < views[j].ID
	})

	if f.Offset >= len(views) {
		return []entry.View{}, nil
	}
	end := len(views)
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}

	return views[f.Offset:end], nil
}

func (r *EntriesRepo) Count(ctx context.Context, f entry.ListFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.matchingLocked(f)), nil
}

func (r *EntriesRepo) matchingLocked(f entry.ListFilter) []entry.View {
	out := make([]entry.View, 0)

	for _, e := range r.s.entries {
		if e.OwnerID != f.OwnerID {
			continue
		}

		v := entry.View{
			ID:         e.ID,
			PromptID:   e.PromptID,
			Text:       e.Text,
			Date:       entry.FormatTimestamp(e.CreatedAt),
			PromptText: r.s.prompts[e.PromptID].Text,
			CreatedAt:  e.CreatedAt,
		}
		if v.Matches(f.Search, f.Scope) {
			out = append(out, v)
		}
	}

	return out
}
