package testutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/character"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	characterrepo "github.com/KirkDiggler/rpg-compendium/internal/repositories/character"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	dicesession "github.com/KirkDiggler/rpg-compendium/internal/repositories/dice_session"
)

// Wizard is a character wizard backed by miniredis and a seeded store
type Wizard struct {
	Service *character.Orchestrator
	Store   *compendium.Store
	Dice    dice.Service
	Clock   *clock.Fixed
}

// NewTestWizard wires a character wizard over the seeded compendium. Dice
// rolls come from a roller seeded with seed.
func NewTestWizard(t testing.TB, seed int64) *Wizard {
	t.Helper()
	client, _ := NewTestRedis(t)
	store := NewTestStore(t)
	SeedCompendium(t, store)
	clk := clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	chars, err := characterrepo.NewRedis(&characterrepo.RedisConfig{Client: client, Clock: clk})
	require.NoError(t, err)
	sessions, err := dicesession.NewRedisRepository(&dicesession.Config{Client: client})
	require.NoError(t, err)
	diceSvc, err := dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: sessions,
		IDGenerator:     idgen.NewSequential("roll"),
		Roller:          dice.NewSeededRoller(seed),
	})
	require.NoError(t, err)

	svc, err := character.New(&character.Config{
		CharacterRepo: chars,
		Store:         store,
		Dice:          diceSvc,
		IDGenerator:   idgen.NewSequential("char"),
		Clock:         clk,
	})
	require.NoError(t, err)
	return &Wizard{Service: svc, Store: store, Dice: diceSvc, Clock: clk}
}
