package dice

import (
	"time"

	dicesession "github.com/KirkDiggler/rpg-compendium/internal/repositories/dice_session"
)

// RollDiceInput defines the request for rolling dice
type RollDiceInput struct {
	EntityID    string
	Context     string
	Notation    string
	Description string
	TTL         time.Duration
}

// RollDiceOutput defines the response for rolling dice
type RollDiceOutput struct {
	Roll    *dicesession.Roll
	Session *dicesession.Session
}

// GetRollSessionInput defines the request for getting a roll session
type GetRollSessionInput struct {
	EntityID string
	Context  string
}

// GetRollSessionOutput defines the response for getting a roll session
type GetRollSessionOutput struct {
	Session *dicesession.Session
}

// ClearRollSessionInput defines the request for clearing a roll session
type ClearRollSessionInput struct {
	EntityID string
	Context  string
}

// ClearRollSessionOutput defines the response for clearing a roll session
type ClearRollSessionOutput struct {
	RollsDeleted int
}

// RollAbilityScoresInput defines the request for rolling ability scores for character creation
type RollAbilityScoresInput struct {
	EntityID string
	Method   string // "4d6_drop_lowest", "3d6" or "4d6_reroll_1s"
}

// RollAbilityScoresOutput defines the response for rolling ability scores
type RollAbilityScoresOutput struct {
	Rolls   []dicesession.Roll
	Session *dicesession.Session
}

// RollHitPointsInput defines the request for rolling hit points on level up
type RollHitPointsInput struct {
	EntityID    string
	HitDie      int
	ConModifier int
	Description string
}

// RollHitPointsOutput defines the response for rolling hit points
type RollHitPointsOutput struct {
	Roll *dicesession.Roll
	// HitPoints is the roll plus the constitution modifier, never below 1
	HitPoints int
}

// UseRollsInput marks rolls in a session as assigned
type UseRollsInput struct {
	EntityID string
	Context  string
	RollIDs  []string
}

// UseRollsOutput returns the rolls in the order requested
type UseRollsOutput struct {
	Rolls []dicesession.Roll
}
