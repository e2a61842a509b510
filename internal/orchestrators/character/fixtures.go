package character

import (
	"context"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	characterrepo "github.com/KirkDiggler/rpg-compendium/internal/repositories/character"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// Export collects characters into a fixture
func (o *Orchestrator) Export(ctx context.Context, input *character.ExportInput) (*character.ExportOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var chars []*dnd5e.Character
	if len(input.CharacterIDs) > 0 {
		for _, id := range input.CharacterIDs {
			char, err := o.load(ctx, id)
			if err != nil {
				return nil, err
			}
			chars = append(chars, char)
		}
	} else {
		out, err := o.characterRepo.List(ctx, characterrepo.ListInput{Tag: input.Tag})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list characters")
		}
		chars = out.Characters
	}

	return &character.ExportOutput{Fixture: &character.Fixture{
		Version:    character.FixtureVersion,
		ExportedAt: o.clock.Now().Unix(),
		Characters: chars,
	}}, nil
}

// Import loads the characters of a fixture. Existing characters are skipped
// unless Overwrite is set.
func (o *Orchestrator) Import(ctx context.Context, input *character.ImportInput) (*character.ImportOutput, error) {
	if input == nil || input.Fixture == nil {
		return nil, errors.InvalidArgument("fixture is required")
	}
	if v := input.Fixture.Version; v != character.FixtureVersion {
		return nil, errors.InvalidArgumentf("unsupported fixture version %d", v)
	}

	out := &character.ImportOutput{}
	for i, char := range input.Fixture.Characters {
		if char == nil || char.ID == "" {
			return nil, errors.InvalidArgumentf("fixture character %d has no ID", i)
		}

		_, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{Character: char})
		switch {
		case err == nil:
			out.Created++
		case errors.IsAlreadyExists(err) && input.Overwrite:
			if _, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{Character: char}); err != nil {
				return nil, errors.Wrapf(err, "failed to overwrite character %s", char.ID)
			}
			out.Updated++
		case errors.IsAlreadyExists(err):
			out.Skipped++
		default:
			return nil, errors.Wrapf(err, "failed to import character %s", char.ID)
		}
	}

	o.logger.Info("fixture imported",
		zap.Int("created", out.Created),
		zap.Int("updated", out.Updated),
		zap.Int("skipped", out.Skipped))
	return out, nil
}
