package entry

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("entry not found")
	ErrEditWindowClosed = errors.New("entry can only be edited on the day it was written")
)

// TimestampLayout is the canonical string form of CreatedAt. Date searches
// match against it.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const (
	FirstPageSize = 6
	NextPageSize  = 3
	MaxPageSize   = 100
)

type Entry struct {
	ID        int64
	PromptID  int64
	OwnerID   int64
	Text      string
	CreatedAt time.Time
}

// View is an entry joined with its prompt text, as listed to the owner.
type View struct {
	ID         int64     `json:"id"`
	PromptID   int64     `json:"question_id"`
	Text       string    `json:"text"`
	Date       string    `json:"date"`
	PromptText string    `json:"question_text"`
	CreatedAt  time.Time `json:"-"`
}

type SearchScope string

const (
	ScopeAll      SearchScope = "all"
	ScopeKeyword  SearchScope = "keyword"
	ScopeQuestion SearchScope = "question"
	ScopeDate     SearchScope = "date"
)

// ParseScope maps unknown or empty values to ScopeAll.
func ParseScope(s string) SearchScope {
	switch SearchScope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeKeyword:
		return ScopeKeyword
	case ScopeQuestion:
		return ScopeQuestion
	case ScopeDate:
		return ScopeDate
	default:
		return ScopeAll
	}
}

// ListFilter is what a store needs to run the page and count queries.
type ListFilter struct {
	OwnerID int64
	Search  string
	Scope   SearchScope
	Limit   int
	Offset  int
}

type Page struct {
	Entries []View `json:"entries"`
	Total   int    `json:"total"`
	HasMore bool   `json:"hasMore"`
}

// Window resolves page/limit into limit/offset. Without an explicit limit the
// first page holds FirstPageSize entries and every later page NextPageSize,
// continuing right after the previous page.
func Window(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}

	if limit > 0 {
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
		return limit, (page - 1) * limit
	}

	if page == 1 {
		return FirstPageSize, 0
	}
	return NextPageSize, FirstPageSize + (page-2)*NextPageSize
}

// FormatTimestamp renders t in TimestampLayout (UTC, millisecond precision).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Stamp normalizes a creation time to what the stores persist.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// EditableAt reports whether an entry created at createdAt may still be
// edited at now: both must fall on the same UTC calendar day.
func EditableAt(createdAt, now time.Time) bool {
	cy, cm, cd := createdAt.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return cy == ny && cm == nm && cd == nd
}

// Matches applies the search predicate in memory. Stores backed by SQL
// express the same predicate in their query.
func (v View) Matches(search string, scope SearchScope) bool {
	if search == "" {
		return true
	}

	needle := strings.ToLower(search)
	has := func(s string) bool { return strings.Contains(strings.ToLower(s), needle) }

	switch scope {
	case ScopeKeyword:
		return has(v.Text) || has(v.PromptText)
	case ScopeQuestion:
		return has(v.PromptText)
	case ScopeDate:
		return has(v.Date)
	default:
		return has(v.Text) || has(v.PromptText) || has(v.Date)
	}
}
