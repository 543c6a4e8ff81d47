package memory

import (
	"sync"

	"github.com/geocoder89/journal/internal/domain/entry"
	"github.com/geocoder89/journal/internal/domain/prompt"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/domain/verification"
)

// Store keeps every table behind one lock so cross-table checks (foreign
// keys, the entry edit window) see a consistent snapshot.
type Store struct {
	mu sync.RWMutex

	users   map[int64]user.User
	prompts map[int64]prompt.Prompt
	entries map[int64]entry.Entry
	codes   []verification.Code

	nextUserID   int64
	nextPromptID int64
	nextEntryID  int64
	nextCodeID   int64
}

func NewStore() *Store {
	return &Store{
		users:   make(map[int64]user.User),
		prompts: make(map[int64]prompt.Prompt),
		entries: make(map[int64]entry.Entry),
	}
}

func (s *Store) Users() *UsersRepo {
	return &UsersRepo{s: s}
}

func (s *Store) Prompts() *PromptsRepo {
	return &PromptsRepo{s: s}
}

func (s *Store) Entries() *EntriesRepo {
	return &EntriesRepo{s: s}
}

func (s *Store) VerificationCodes() *VerificationCodesRepo {
	return &VerificationCodesRepo{s: s}
}
