// Package character implements the character creation wizard: the steps a
// player takes from an empty character to a validated, playable one, and
// the level ups after that
package character

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	characterrepo "github.com/KirkDiggler/rpg-compendium/internal/repositories/character"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// Config holds the dependencies for the character orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	Store         compendium.Queries
	// Entities resolves races, classes and items by slug. Defaults to
	// reading Store directly; pass the entity cache to read through Redis.
	Entities    EntitySource
	Dice        dice.Service
	IDGenerator idgen.Generator
	Rules       *config.Rules
	Clock       clock.Clock
	Logger      *zap.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	vb.RequiredIf(c.CharacterRepo == nil, "CharacterRepo")
	vb.RequiredIf(c.Store == nil, "Store")
	vb.RequiredIf(c.Dice == nil, "Dice")
	if err := vb.Build(); err != nil {
		return err
	}

	if c.Entities == nil {
		c.Entities = NewStoreSource(c.Store)
	}
	if c.IDGenerator == nil {
		c.IDGenerator = idgen.NewUUID("char")
	}
	if c.Rules == nil {
		rules, err := config.LoadRules()
		if err != nil {
			return errors.Wrap(err, "failed to load rules")
		}
		c.Rules = rules
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// Orchestrator implements the character.Service interface
type Orchestrator struct {
	characterRepo characterrepo.Repository
	store         compendium.Queries
	entities      EntitySource
	dice          dice.Service
	idGen         idgen.Generator
	rules         *config.Rules
	clock         clock.Clock
	logger        *zap.Logger
}

// New creates a new character orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		store:         cfg.Store,
		entities:      cfg.Entities,
		dice:          cfg.Dice,
		idGen:         cfg.IDGenerator,
		rules:         cfg.Rules,
		clock:         cfg.Clock,
		logger:        cfg.Logger.With(zap.String("component", "character-wizard")),
	}, nil
}

// Ensure Orchestrator implements the Service interface
var _ character.Service = (*Orchestrator)(nil)

// Character lifecycle methods

// CreateCharacter starts an empty character
func (o *Orchestrator) CreateCharacter(ctx context.Context, input *character.CreateCharacterInput) (*character.CreateCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	char := &dnd5e.Character{
		ID:         o.idGen.Generate(),
		Name:       strings.TrimSpace(input.Name),
		Tags:       input.Tags,
		Selections: make(map[string][]string),
	}
	out, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{Character: char})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create character")
	}

	o.logger.Debug("character created", zap.String("character_id", char.ID))
	return &character.CreateCharacterOutput{Character: out.Character}, nil
}

// GetCharacter retrieves a character by ID
func (o *Orchestrator) GetCharacter(ctx context.Context, input *character.GetCharacterInput) (*character.GetCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	char, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	return &character.GetCharacterOutput{Character: char}, nil
}

// ListCharacters lists characters, optionally filtered by tag
func (o *Orchestrator) ListCharacters(ctx context.Context, input *character.ListCharactersInput) (*character.ListCharactersOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	out, err := o.characterRepo.List(ctx, characterrepo.ListInput{Tag: input.Tag})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list characters")
	}
	return &character.ListCharactersOutput{Characters: out.Characters}, nil
}

// DeleteCharacter deletes a character
func (o *Orchestrator) DeleteCharacter(ctx context.Context, input *character.DeleteCharacterInput) (*character.DeleteCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("characterID", input.CharacterID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	if _, err := o.characterRepo.Delete(ctx, characterrepo.DeleteInput{ID: input.CharacterID}); err != nil {
		return nil, errors.Wrapf(err, "failed to delete character %s", input.CharacterID)
	}
	return &character.DeleteCharacterOutput{}, nil
}

// SetDetails sets the name and alignment
func (o *Orchestrator) SetDetails(ctx context.Context, input *character.SetDetailsInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	name := strings.TrimSpace(input.Name)
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", name, vb)
	if input.Alignment != "" {
		errors.ValidateEnum("alignment", input.Alignment, dnd5e.Alignments, vb)
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		char.Name = name
		char.Alignment = input.Alignment
		return nil
	})
}

// ListOptions lists what a character can pick for one creation step
func (o *Orchestrator) ListOptions(ctx context.Context, input *character.ListOptionsInput) (*character.ListOptionsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var options []character.Option
	switch input.Kind {
	case character.OptionRace, character.OptionSubrace:
		races, err := o.listRaces(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range races {
			if (input.Kind == character.OptionRace) == r.IsSubrace() {
				continue
			}
			if input.Kind == character.OptionSubrace && input.Parent != "" && r.ParentSlug != input.Parent {
				continue
			}
			options = append(options, character.Option{
				Slug:            r.Slug,
				Name:            r.Name,
				Parent:          r.ParentSlug,
				SubraceRequired: r.SubraceRequired,
			})
		}
	case character.OptionClass:
		classes, err := o.listClasses(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range classes {
			options = append(options, character.Option{
				Slug:             c.Slug,
				Name:             c.Name,
				SubclassLevel:    c.SubclassLevel(),
				Spellcaster:      c.SpellcastingAbility != "",
				Equipment:        itemNames(c.Equipment),
				EquipmentChoices: len(c.EquipmentChoices),
			})
		}
	case character.OptionSubclass:
		if input.Parent == "" {
			return nil, errors.InvalidArgument("parent class is required for subclasses")
		}
		cls, err := o.class(ctx, input.Parent)
		if err != nil {
			return nil, err
		}
		for _, sc := range cls.Subclasses {
			options = append(options, character.Option{
				Slug:          dnd5e.Slugify(sc.Name),
				Name:          sc.Name,
				Parent:        cls.Slug,
				SubclassLevel: cls.SubclassLevel(),
				Spellcaster:   sc.SpellcastingAbility != "",
			})
		}
	case character.OptionBackground:
		rows, err := o.store.ListEntities(ctx, compendium.ListEntitiesInput{Type: dnd5e.EntityTypeBackground})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list backgrounds")
		}
		for _, row := range rows.Rows {
			bg, err := o.background(ctx, row.Slug)
			if err != nil {
				return nil, err
			}
			options = append(options, character.Option{Slug: row.Slug, Name: row.Name, Equipment: itemNames(bg.Equipment)})
		}
	default:
		return nil, errors.InvalidArgumentf("unknown option kind %q", input.Kind)
	}

	return &character.ListOptionsOutput{Options: options}, nil
}

// PendingChoices lists the choices the character still has to resolve
func (o *Orchestrator) PendingChoices(ctx context.Context, input *character.PendingChoicesInput) (*character.PendingChoicesOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	char, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	defs, changed, err := o.reconcile(ctx, char)
	if err != nil {
		return nil, err
	}
	if changed {
		if _, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{Character: char}); err != nil {
			return nil, errors.Wrap(err, "failed to save character")
		}
	}
	return &character.PendingChoicesOutput{PendingChoices: pendingOnly(char, defs)}, nil
}

func (o *Orchestrator) load(ctx context.Context, id string) (*dnd5e.Character, error) {
	if id == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}
	out, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: id})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", id)
	}
	if out.Character.Selections == nil {
		out.Character.Selections = make(map[string][]string)
	}
	return out.Character, nil
}

// update loads a character, applies fn, drops choices fn invalidated and
// saves the result
func (o *Orchestrator) update(ctx context.Context, id string, fn func(char *dnd5e.Character) error) (*character.UpdateOutput, error) {
	char, err := o.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(char); err != nil {
		return nil, err
	}

	defs, _, err := o.reconcile(ctx, char)
	if err != nil {
		return nil, err
	}

	out, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{Character: char})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save character %s", id)
	}
	return &character.UpdateOutput{
		Character:      out.Character,
		PendingChoices: pendingOnly(out.Character, defs),
	}, nil
}

// pendingOnly returns the unresolved creation choices followed by the
// stored level up choices
func itemNames(items []dnd5e.EquipmentItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func pendingOnly(char *dnd5e.Character, defs []dnd5e.PendingChoice) []dnd5e.PendingChoice {
	out := make([]dnd5e.PendingChoice, 0, len(defs)+len(char.PendingLevelUp))
	for _, d := range defs {
		if d.Remaining > 0 {
			out = append(out, d)
		}
	}
	return append(out, char.PendingLevelUp...)
}

func removeLevelUpChoice(char *dnd5e.Character, id string) {
	char.PendingLevelUp = slices.DeleteFunc(char.PendingLevelUp, func(p dnd5e.PendingChoice) bool {
		return p.ID == id
	})
}
