package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/journal/internal/domain/prompt"
	"github.com/geocoder89/journal/internal/domain/user"
)

type PromptsRepo struct {
	s *Store
}

func (r *PromptsRepo) Create(ctx context.Context, text string, ownerID *int64) (prompt.Prompt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if ownerID != nil {
		if _, ok := r.s.users[*ownerID]; !ok {
			return prompt.Prompt{}, user.ErrNotFound
		}
	}

	return r.insertLocked(text, ownerID), nil
}

// SeedGlobal inserts texts as global prompts only when there are no prompts
// at all. It reports whether anything was inserted.
func (r *PromptsRepo) SeedGlobal(ctx context.Context, texts []string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(r.s.prompts) > 0 {
		return false, nil
	}
	for _, t := range texts {
		r.insertLocked(t, nil)
	}
	return len(texts) > 0, nil
}

func (r *PromptsRepo) GetByID(ctx context.Context, id int64) (prompt.Prompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.prompts[id]
	if !ok {
		return prompt.Prompt{}, prompt.ErrNotFound
	}
	return p, nil
}

func (r *PromptsRepo) ListEligible(ctx context.Context, userID int64) ([]prompt.Prompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]prompt.Prompt, 0, len(r.s.prompts))
	for _, p := range r.s.prompts {
		if p.EligibleFor(userID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *PromptsRepo) insertLocked(text string, ownerID *int64) prompt.Prompt {
	r.s.nextPromptID++
	p := prompt.Prompt{ID: r.s.nextPromptID, Text: text}
	if ownerID != nil {
		id := *ownerID
		p.OwnerID = &id
	}
	r.s.prompts[p.ID] = p
	return p
}
