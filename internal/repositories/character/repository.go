// Package character provides the interface for character persistence
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/KirkDiggler/rpg-compendium/internal/repositories/character Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// Repository defines the interface for character persistence
type Repository interface {
	// Create creates a new character
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if character with same ID exists
	// Returns errors.Unavailable for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces an existing character
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.NotFound if character doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete deletes a character by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if character doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns every character, or those carrying Tag when set
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Audit scans every stored character and reports the ones that cannot
	// be decoded or whose ID does not match their key
	// Returns errors.Unavailable for storage failures
	Audit(ctx context.Context, input AuditInput) (*AuditOutput, error)

	// Purge removes characters and their index entries without decoding them
	// Returns errors.InvalidArgument when no IDs are given
	Purge(ctx context.Context, input PurgeInput) (*PurgeOutput, error)
}

// CreateInput defines the input for creating a character
type CreateInput struct {
	Character *dnd5e.Character
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	Character *dnd5e.Character
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *dnd5e.Character
}

// UpdateInput defines the input for updating a character
type UpdateInput struct {
	Character *dnd5e.Character
}

// UpdateOutput defines the output for updating a character
type UpdateOutput struct {
	Character *dnd5e.Character
}

// DeleteInput defines the input for deleting a character
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a character
type DeleteOutput struct{}

// ListInput defines the input for listing characters
type ListInput struct {
	Tag string
}

// ListOutput defines the output for listing characters
type ListOutput struct {
	Characters []*dnd5e.Character
}

// AuditInput defines the input for auditing stored characters
type AuditInput struct{}

// CorruptCharacter is a stored character that cannot be loaded
type CorruptCharacter struct {
	ID     string
	Reason string
}

// AuditOutput defines the output for auditing stored characters
type AuditOutput struct {
	Checked int
	Corrupt []CorruptCharacter
}

// PurgeInput defines the input for purging characters
type PurgeInput struct {
	IDs []string
}

// PurgeOutput defines the output for purging characters
type PurgeOutput struct {
	Removed int
}
