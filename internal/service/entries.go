package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/journal/internal/domain/entry"
	"github.com/geocoder89/journal/internal/domain/prompt"
)

type EntryLedger struct {
	entries EntriesRepo
	prompts PromptsRepo
	now     Clock
}

func NewEntryLedger(entries EntriesRepo, prompts PromptsRepo) *EntryLedger {
	return &EntryLedger{
		entries: entries,
		prompts: prompts,
		now:     systemClock,
	}
}

func (l *EntryLedger) WithClock(now Clock) *EntryLedger {
	l.now = now
	return l
}

// ListQuery is the raw paging and search input of a listing. Limit 0 means
// the default page sizes.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Scope  entry.SearchScope
}

// Submit records a new entry answering promptID, stamped with the current time.
func (l *EntryLedger) Submit(ctx context.Context, userID, promptID int64, text string) (int64, error) {
	if promptID <= 0 || strings.TrimSpace(text) == "" {
		return 0, invalid("question_id and text are required")
	}

	if _, err := l.prompts.GetByID(ctx, promptID); err != nil {
		if errors.Is(err, prompt.ErrNotFound) {
			return 0, invalid("unknown question")
		}
		return 0, err
	}

	e, err := l.entries.Create(ctx, entry.Entry{
		PromptID:  promptID,
		OwnerID:   userID,
		Text:      text,
		CreatedAt: l.now(),
	})
	if err != nil {
		// the prompt vanished between the check and the insert
		if errors.Is(err, prompt.ErrNotFound) {
			return 0, invalid("unknown question")
		}
		return 0, err
	}

	return e.ID, nil
}

// EditableNow reports whether userID may still edit the entry. Missing and
// foreign entries are both entry.ErrNotFound.
func (l *EntryLedger) EditableNow(ctx context.Context, entryID, userID int64) (bool, error) {
	e, err := l.entries.GetOwned(ctx, entryID, userID)
	if err != nil {
		return false, err
	}
	return entry.EditableAt(e.CreatedAt, l.now()), nil
}

// Update replaces the text of an owned entry written today.
func (l *EntryLedger) Update(ctx context.Context, entryID, userID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return invalid("text is required")
	}
	return l.entries.UpdateText(ctx, entryID, userID, text, l.now())
}

// List returns one page of the user's entries, newest first.
func (l *EntryLedger) List(ctx context.Context, userID int64, q ListQuery) (entry.Page, error) {
	limit, offset := entry.Window(q.Page, q.Limit)

	f := entry.ListFilter{
		OwnerID: userID,
		Search:  strings.TrimSpace(q.Search),
		Scope:   q.Scope,
		Limit:   limit,
		Offset:  offset,
	}
	if f.Scope == "" {
		f.Scope = entry.ScopeAll
	}

	views, err := l.entries.List(ctx, f)
	if err != nil {
		return entry.Page{}, err
	}

	total, err := l.entries.Count(ctx, f)
	if err != nil {
		return entry.Page{}, err
	}

	return entry.Page{
		Entries: views,
		Total:   total,
		HasMore: total > offset+len(views),
	}, nil
}
