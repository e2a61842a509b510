// Package dicesession stores roll sessions: the dice a character has rolled
// for one purpose, such as ability scores, waiting to be assigned
package dicesession

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=dicesessionmock github.com/KirkDiggler/rpg-compendium/internal/repositories/dice_session Repository

// Session groups the rolls made by one entity in one context
type Session struct {
	EntityID  string    `json:"entity_id"`
	Context   string    `json:"context"`
	Rolls     []Roll    `json:"rolls"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Roll finds a roll in the session by id
func (s *Session) Roll(rollID string) (*Roll, bool) {
	for i := range s.Rolls {
		if s.Rolls[i].RollID == rollID {
			return &s.Rolls[i], true
		}
	}
	return nil, false
}

// Unused returns the rolls not yet assigned
func (s *Session) Unused() []Roll {
	var out []Roll
	for _, r := range s.Rolls {
		if !r.Used {
			out = append(out, r)
		}
	}
	return out
}

// Roll is a single dice roll result
type Roll struct {
	RollID      string `json:"roll_id"`
	Notation    string `json:"notation"`
	Dice        []int  `json:"dice"`
	Dropped     []int  `json:"dropped,omitempty"`
	Modifier    int    `json:"modifier,omitempty"`
	Total       int    `json:"total"`
	Description string `json:"description,omitempty"`
	// Used is set once the roll has been assigned, e.g. to an ability
	Used bool `json:"used,omitempty"`
}

// CreateInput contains parameters for creating a session
type CreateInput struct {
	EntityID string
	Context  string
	Rolls    []Roll
	TTL      time.Duration // zero uses the default
}

// CreateOutput contains the result of creating a session
type CreateOutput struct {
	Session *Session
}

// GetInput contains parameters for retrieving a session
type GetInput struct {
	EntityID string
	Context  string
}

// GetOutput contains the result of retrieving a session
type GetOutput struct {
	Session *Session
}

// DeleteInput contains parameters for deleting a session
type DeleteInput struct {
	EntityID string
	Context  string
}

// DeleteOutput contains the result of deleting a session
type DeleteOutput struct {
	RollsDeleted int
}

// Repository defines the interface for roll session storage
type Repository interface {
	// Create stores a new session, replacing any session in the same context
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a session
	// Returns errors.NotFound when the session is missing or expired
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// Update replaces an existing session, keeping its expiry
	Update(ctx context.Context, session *Session) error
}
