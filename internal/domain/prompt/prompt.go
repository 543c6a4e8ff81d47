package prompt

import "errors"

var (
	ErrNotFound          = errors.New("prompt not found")
	ErrNoPromptAvailable = errors.New("no prompt available")
)

// Prompt is a question offered to a user. A nil OwnerID means the prompt is
// global and eligible for everyone.
type Prompt struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	OwnerID *int64 `json:"-"`
}

func (p Prompt) EligibleFor(userID int64) bool {
	return p.OwnerID == nil || *p.OwnerID == userID
}

// Seed is inserted once, only when the prompt table is empty.
var Seed = []string{
	"What made you smile today? 😊",
	"What’s a new thing you learned recently?",
	"What’s a goal you’re excited about?",
	"What’s a memory that makes you happy?",
	"What’s something you’re grateful for today?",
}
