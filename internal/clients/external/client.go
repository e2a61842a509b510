// Package external is the location for the dnd5e-api client
package external

//go:generate mockgen -destination=mock/mock_client.go -package=externalmock github.com/KirkDiggler/rpg-compendium/internal/clients/external Client

import (
	"context"
	"net/http"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	internalDnd5e "github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// SourceCode is the source book recorded on entities loaded from the API
const SourceCode = "SRD"

// Client defines the interface for the SRD API
type Client interface {
	// ListSpells returns every spell matching input with full details.
	// A nil input lists every spell.
	ListSpells(ctx context.Context, input *ListSpellsInput) ([]*internalDnd5e.Spell, error)

	// GetSpell fetches one spell by its API index, e.g. "fireball"
	GetSpell(ctx context.Context, index string) (*internalDnd5e.Spell, error)
}

// ListSpellsInput filters ListSpells
type ListSpellsInput struct {
	Level *int
	// Class is a class index such as "wizard"
	Class string
}

// spellAPI is the part of the dnd5e-api client this package calls
type spellAPI interface {
	ListSpells(input *dnd5e.ListSpellsInput) ([]*entities.ReferenceItem, error)
	GetSpell(key string) (*entities.Spell, error)
}

// Config contains configuration options for the external client.
type Config struct {
	// BaseURL for the D&D 5e API (optional, defaults to https://www.dnd5eapi.co/api/2014/)
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 30 seconds)
	HTTPTimeout time.Duration
	// CacheTTL for the cached client (optional, defaults to 24 hours)
	CacheTTL time.Duration
	// Concurrency bounds parallel detail requests (optional, defaults to 8)
	Concurrency int
	Logger      *zap.Logger
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 8
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	vb := errors.NewValidationBuilder()
	if cfg.Concurrency < 0 {
		vb.Field("concurrency", "must not be negative")
	}
	return vb.Build()
}

type client struct {
	api         spellAPI
	concurrency int
	logger      *zap.Logger
}

// New creates a new external client with the given configuration.
func New(cfg *Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	baseClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  httpClient,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create D&D 5e API client")
	}

	return newClient(dnd5e.NewCachedClient(baseClient, cfg.CacheTTL), cfg.Concurrency, cfg.Logger), nil
}

func newClient(api spellAPI, concurrency int, logger *zap.Logger) *client {
	return &client{api: api, concurrency: concurrency, logger: logger}
}

func (c *client) GetSpell(_ context.Context, index string) (*internalDnd5e.Spell, error) {
	if index == "" {
		return nil, errors.InvalidArgument("spell index is required")
	}
	spell, err := c.api.GetSpell(index)
	if err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to get spell %s", index)
	}
	return ConvertSpell(spell)
}

func (c *client) ListSpells(ctx context.Context, input *ListSpellsInput) ([]*internalDnd5e.Spell, error) {
	var apiInput *dnd5e.ListSpellsInput
	if input != nil {
		apiInput = &dnd5e.ListSpellsInput{Level: input.Level, Class: input.Class}
	}

	c.logger.Info("listing spells from the D&D 5e API")
	refs, err := c.api.ListSpells(apiInput)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to list spells from D&D 5e API")
	}
	c.logger.Info("got spell references", zap.Int("count", len(refs)))

	spells := make([]*internalDnd5e.Spell, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ref := range refs {
		if ref == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			spell, err := c.GetSpell(gctx, ref.Key)
			if err != nil {
				c.logger.Error("failed to get spell details", zap.String("spell", ref.Key), zap.Error(err))
				return err
			}
			spells[i] = spell
			c.logger.Debug("loaded spell details", zap.String("spell", ref.Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := spells[:0]
	for _, s := range spells {
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}
