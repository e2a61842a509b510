// Package character defines the interface for the character creation wizard
package character

//go:generate mockgen -destination=mock/mock_service.go -package=charactermock github.com/KirkDiggler/rpg-compendium/internal/services/character Service

import (
	"context"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// Service defines the interface for character operations
type Service interface {
	// Character lifecycle
	CreateCharacter(ctx context.Context, input *CreateCharacterInput) (*CreateCharacterOutput, error)
	GetCharacter(ctx context.Context, input *GetCharacterInput) (*GetCharacterOutput, error)
	ListCharacters(ctx context.Context, input *ListCharactersInput) (*ListCharactersOutput, error)
	DeleteCharacter(ctx context.Context, input *DeleteCharacterInput) (*DeleteCharacterOutput, error)

	// ListOptions lists the races, subraces, classes, subclasses or
	// backgrounds a character can pick
	ListOptions(ctx context.Context, input *ListOptionsInput) (*ListOptionsOutput, error)

	// Creation steps. Each returns the updated character and the choices
	// still pending.
	SetRace(ctx context.Context, input *SetRaceInput) (*UpdateOutput, error)
	SetSubrace(ctx context.Context, input *SetSubraceInput) (*UpdateOutput, error)
	SetClass(ctx context.Context, input *SetClassInput) (*UpdateOutput, error)
	SetSubclass(ctx context.Context, input *SetSubclassInput) (*UpdateOutput, error)
	SetBackground(ctx context.Context, input *SetBackgroundInput) (*UpdateOutput, error)
	SetAbilityScores(ctx context.Context, input *SetAbilityScoresInput) (*UpdateOutput, error)
	SetEquipmentMode(ctx context.Context, input *SetEquipmentModeInput) (*UpdateOutput, error)
	SetDetails(ctx context.Context, input *SetDetailsInput) (*UpdateOutput, error)

	// Choices
	PendingChoices(ctx context.Context, input *PendingChoicesInput) (*PendingChoicesOutput, error)
	ResolveChoice(ctx context.Context, input *ResolveChoiceInput) (*UpdateOutput, error)

	// Validate checks the character is ready to play and records the
	// result on IsComplete
	Validate(ctx context.Context, input *ValidateInput) (*ValidateOutput, error)
	Stats(ctx context.Context, input *StatsInput) (*StatsOutput, error)

	// Progression
	LevelUp(ctx context.Context, input *LevelUpInput) (*UpdateOutput, error)
	AddClass(ctx context.Context, input *AddClassInput) (*UpdateOutput, error)

	// Fixtures
	Export(ctx context.Context, input *ExportInput) (*ExportOutput, error)
	Import(ctx context.Context, input *ImportInput) (*ImportOutput, error)
}

// UpdateOutput is returned by every step that changes a character
type UpdateOutput struct {
	Character      *dnd5e.Character
	PendingChoices []dnd5e.PendingChoice
}

// CreateCharacterInput defines the request for starting a character
type CreateCharacterInput struct {
	Name string // Optional
	Tags []string
}

// CreateCharacterOutput defines the response for starting a character
type CreateCharacterOutput struct {
	Character *dnd5e.Character
}

// GetCharacterInput defines the request for getting a character
type GetCharacterInput struct {
	CharacterID string
}

// GetCharacterOutput defines the response for getting a character
type GetCharacterOutput struct {
	Character *dnd5e.Character
}

// ListCharactersInput defines the request for listing characters
type ListCharactersInput struct {
	Tag string // Optional filter
}

// ListCharactersOutput defines the response for listing characters
type ListCharactersOutput struct {
	Characters []*dnd5e.Character
}

// DeleteCharacterInput defines the request for deleting a character
type DeleteCharacterInput struct {
	CharacterID string
}

// DeleteCharacterOutput defines the response for deleting a character
type DeleteCharacterOutput struct{}

// Option kinds accepted by ListOptions
const (
	OptionRace       = "race"
	OptionSubrace    = "subrace"
	OptionClass      = "class"
	OptionSubclass   = "subclass"
	OptionBackground = "background"
)

// ListOptionsInput defines the request for listing selectable options
type ListOptionsInput struct {
	Kind string
	// Parent is the race slug for subraces and the class slug for subclasses
	Parent string
}

// Option is one selectable race, class, background and so on
type Option struct {
	Slug   string
	Name   string
	Parent string
	// SubraceRequired is set on races that cannot be played without a subrace
	SubraceRequired bool
	// SubclassLevel is set on classes and is the level a subclass is picked
	SubclassLevel int
	// Spellcaster is set on classes with a spellcasting ability
	Spellcaster bool
	// Equipment names the items granted without a choice: a class's fixed
	// starting equipment or a background's equipment
	Equipment []string
	// EquipmentChoices counts a class's (a)/(b) equipment choices
	EquipmentChoices int
}

// ListOptionsOutput defines the response for listing selectable options
type ListOptionsOutput struct {
	Options []Option
}

// SetRaceInput defines the request for setting a race
type SetRaceInput struct {
	CharacterID string
	RaceSlug    string
}

// SetSubraceInput defines the request for setting a subrace
type SetSubraceInput struct {
	CharacterID string
	SubraceSlug string
}

// SetClassInput defines the request for setting the starting class
type SetClassInput struct {
	CharacterID string
	ClassSlug   string
}

// SetSubclassInput defines the request for setting a subclass
type SetSubclassInput struct {
	CharacterID  string
	ClassSlug    string // Optional, defaults to the primary class
	SubclassSlug string
}

// SetBackgroundInput defines the request for setting a background
type SetBackgroundInput struct {
	CharacterID    string
	BackgroundSlug string
}

// SetAbilityScoresInput defines the request for setting base ability scores
type SetAbilityScoresInput struct {
	CharacterID string
	Method      string
	// Scores are keyed by ability code; unused for the rolled method
	Scores map[string]int
	// RollAssignments maps ability code to a roll id in the character's
	// ability score roll session
	RollAssignments map[string]string
}

// SetEquipmentModeInput defines the request for taking class equipment or gold
type SetEquipmentModeInput struct {
	CharacterID string
	Mode        string
}

// SetDetailsInput defines the request for naming a character
type SetDetailsInput struct {
	CharacterID string
	Name        string
	Alignment   string // Optional
}

// PendingChoicesInput defines the request for listing unresolved choices
type PendingChoicesInput struct {
	CharacterID string
}

// PendingChoicesOutput defines the response for listing unresolved choices
type PendingChoicesOutput struct {
	PendingChoices []dnd5e.PendingChoice
}

// ResolveChoiceInput defines the request for resolving a choice. Resolving an
// already resolved choice replaces the earlier selections.
type ResolveChoiceInput struct {
	CharacterID string
	ChoiceID    string
	Selections  []string
}

// ValidateInput defines the request for validating a character
type ValidateInput struct {
	CharacterID string
}

// ValidateOutput defines the response for validating a character
type ValidateOutput struct {
	Character *dnd5e.Character
	Valid     bool
	Errors    []string
	Warnings  []string
}

// StatsInput defines the request for computing derived statistics
type StatsInput struct {
	CharacterID string
}

// Stats are the numbers derived from a character
type Stats struct {
	HitPoints        int
	ArmorClass       int
	ProficiencyBonus int
	Speed            int
	Size             string
	AbilityScores    map[string]int
	AbilityModifiers map[string]int
	SavingThrows     map[string]int
	Skills           map[string]int
	Spellcasting     []SpellcastingStats
}

// SpellcastingStats are the casting numbers of one class
type SpellcastingStats struct {
	ClassSlug   string
	Ability     string
	SaveDC      int
	AttackBonus int
	Slots       [9]int
}

// StatsOutput defines the response for computing derived statistics
type StatsOutput struct {
	Stats *Stats
}

// LevelUpInput defines the request for gaining a level in an existing class
type LevelUpInput struct {
	CharacterID string
	ClassSlug   string
}

// AddClassInput defines the request for multiclassing into a new class
type AddClassInput struct {
	CharacterID string
	ClassSlug   string
	// Force skips the multiclass ability score requirements
	Force bool
}

// FixtureVersion is the current fixture file version
const FixtureVersion = 1

// Fixture is a portable set of characters
type Fixture struct {
	Version    int                `json:"version"`
	ExportedAt int64              `json:"exported_at"`
	Characters []*dnd5e.Character `json:"characters"`
}

// ExportInput defines the request for exporting characters. An empty input
// exports every character.
type ExportInput struct {
	CharacterIDs []string
	Tag          string
}

// ExportOutput defines the response for exporting characters
type ExportOutput struct {
	Fixture *Fixture
}

// ImportInput defines the request for loading a fixture
type ImportInput struct {
	Fixture *Fixture
	// Overwrite replaces characters that already exist instead of skipping them
	Overwrite bool
}

// ImportOutput defines the response for loading a fixture
type ImportOutput struct {
	Created int
	Updated int
	Skipped int
}
