//go:build integration
// +build integration

package external_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-compendium/internal/clients/external"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

func TestGetSpell_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	client, err := external.New(&external.Config{})
	require.NoError(t, err)

	ctx := context.Background()

	testCases := []struct {
		index     string
		wantName  string
		wantLevel int
		wantDice  bool
	}{
		{index: "fireball", wantName: "Fireball", wantLevel: 3, wantDice: true},
		{index: "fire-bolt", wantName: "Fire Bolt", wantLevel: 0, wantDice: true},
		{index: "mage-armor", wantName: "Mage Armor", wantLevel: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.index, func(t *testing.T) {
			spell, err := client.GetSpell(ctx, tc.index)
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, spell.Name)
			assert.Equal(t, tc.wantLevel, spell.Level)
			assert.Equal(t, "srd:"+tc.index, spell.FullSlug)
			assert.NotEmpty(t, spell.SchoolCode)
			assert.NotEmpty(t, spell.Classes)
			if tc.wantDice {
				require.NotEmpty(t, spell.Effects)
				assert.NotEmpty(t, spell.Effects[0].DiceFormula)
			}
		})
	}

	t.Run("fireball scales by slot", func(t *testing.T) {
		spell, err := client.GetSpell(ctx, "fireball")
		require.NoError(t, err)
		require.Len(t, spell.Effects, 1)
		assert.Equal(t, dnd5e.ScalingSpellSlotLevel, spell.Effects[0].ScalingType)
		assert.Equal(t, "8d6", spell.Effects[0].DiceFormula)
		require.Len(t, spell.SavingThrows, 1)
		assert.Equal(t, "half", spell.SavingThrows[0].EffectOnSave)
	})
}

func TestListSpells_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	client, err := external.New(&external.Config{Concurrency: 4, HTTPTimeout: 20 * time.Second})
	require.NoError(t, err)

	level := 0
	spells, err := client.ListSpells(context.Background(), &external.ListSpellsInput{Level: &level, Class: "wizard"})
	require.NoError(t, err)
	require.NotEmpty(t, spells)
	for _, s := range spells {
		assert.Equal(t, 0, s.Level, s.Name)
		assert.Contains(t, s.Classes, "Wizard", s.Name)
	}
}
