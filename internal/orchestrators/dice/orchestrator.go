// Package dice implements the dice orchestrator for handling dice roll sessions
package dice

//go:generate mockgen -destination=mock/mock_service.go -package=dicemock github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice Service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	dicesession "github.com/KirkDiggler/rpg-compendium/internal/repositories/dice_session"
)

const (
	// Default context for ability score rolling
	ContextAbilityScores = "ability_scores"
	// Context for level-up hit point rolls
	ContextHitPoints = "hit_points"

	// Default TTL for dice sessions
	DefaultSessionTTL = 15 * time.Minute

	// Dice rolling methods
	MethodStandard = "4d6_drop_lowest"
	MethodClassic  = "3d6"
	MethodHeroic   = "4d6_reroll_1s"

	abilityScoreCount = 6
)

// Service defines the interface for dice operations
type Service interface {
	// Generic dice rolling
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)
	GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error)
	ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error)

	// Specialized ability score rolling for character creation
	RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error)

	// RollHitPoints rolls one hit die for a level up
	RollHitPoints(ctx context.Context, input *RollHitPointsInput) (*RollHitPointsOutput, error)

	// UseRolls marks rolls as assigned. A roll can only be used once.
	UseRolls(ctx context.Context, input *UseRollsInput) (*UseRollsOutput, error)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	DiceSessionRepo dicesession.Repository
	IDGenerator     idgen.Generator
	// Roller defaults to dice.DefaultRoller
	Roller dice.Roller
	Logger *zap.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	vb.RequiredIf(c.DiceSessionRepo == nil, "DiceSessionRepo")
	vb.RequiredIf(c.IDGenerator == nil, "IDGenerator")
	if err := vb.Build(); err != nil {
		return err
	}
	if c.Roller == nil {
		c.Roller = dice.DefaultRoller
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

type orchestrator struct {
	diceSessionRepo dicesession.Repository
	idGen           idgen.Generator
	roller          dice.Roller
	logger          *zap.Logger
}

// NewOrchestrator creates a new dice orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		diceSessionRepo: cfg.DiceSessionRepo,
		idGen:           cfg.IDGenerator,
		roller:          cfg.Roller,
		logger:          cfg.Logger.With(zap.String("component", "dice")),
	}, nil
}

// roll rolls n, optionally rerolling 1s and dropping the lowest dice
func (o *orchestrator) roll(n Notation, dropLowest int, rerollOnes bool) (kept, dropped []int, total int, err error) {
	results, err := o.roller.RollN(n.Count, n.Size)
	if err != nil {
		return nil, nil, 0, errors.WrapWithCode(err, errors.CodeInternal, "failed to roll dice")
	}

	if rerollOnes && n.Size > 1 {
		for i, r := range results {
			if r != 1 {
				continue
			}
			// rerolling until not 1 is uniform over [2, size]
			v, err := o.roller.Roll(n.Size - 1)
			if err != nil {
				return nil, nil, 0, errors.WrapWithCode(err, errors.CodeInternal, "failed to reroll die")
			}
			results[i] = v + 1
		}
	}

	kept = results
	if dropLowest > 0 && len(results) > dropLowest {
		sorted := slices.Clone(results)
		slices.Sort(sorted)
		dropped = sorted[:dropLowest]
		kept = sorted[dropLowest:]
		slices.Reverse(kept)
	}

	for _, d := range kept {
		total += d
	}
	return kept, dropped, total + n.Modifier, nil
}

// RollDice rolls dice using the specified notation and stores the result in a session
func (o *orchestrator) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	vb.RequiredIf(input.EntityID == "", "entity_id")
	vb.RequiredIf(input.Context == "", "context")
	vb.RequiredIf(input.Notation == "", "notation")
	if err := vb.Build(); err != nil {
		return nil, err
	}

	n, err := ParseNotation(input.Notation)
	if err != nil {
		return nil, err
	}

	kept, dropped, total, err := o.roll(n, 0, false)
	if err != nil {
		return nil, err
	}

	roll := dicesession.Roll{
		RollID:      o.idGen.Generate(),
		Notation:    n.String(),
		Dice:        kept,
		Dropped:     dropped,
		Modifier:    n.Modifier,
		Total:       total,
		Description: input.Description,
	}

	session, err := o.appendRoll(ctx, input.EntityID, input.Context, roll, input.TTL)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("dice rolled",
		zap.String("entity_id", input.EntityID),
		zap.String("context", input.Context),
		zap.String("notation", roll.Notation),
		zap.Int("total", roll.Total),
		zap.String("roll_id", roll.RollID),
	)

	return &RollDiceOutput{
		Roll:    &session.Rolls[len(session.Rolls)-1],
		Session: session,
	}, nil
}

// appendRoll adds roll to the entity's session for context, creating it if missing
func (o *orchestrator) appendRoll(ctx context.Context, entityID, rollContext string, roll dicesession.Roll, ttl time.Duration) (*dicesession.Session, error) {
	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: entityID,
		Context:  rollContext,
	})
	if err == nil {
		session := getOutput.Session
		session.Rolls = append(session.Rolls, roll)
		if err := o.diceSessionRepo.Update(ctx, session); err != nil {
			return nil, errors.Wrap(err, "failed to update dice session")
		}
		return session, nil
	}
	if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, "failed to check for existing session")
	}

	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	createOutput, err := o.diceSessionRepo.Create(ctx, dicesession.CreateInput{
		EntityID: entityID,
		Context:  rollContext,
		Rolls:    []dicesession.Roll{roll},
		TTL:      ttl,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dice session")
	}
	return createOutput.Session, nil
}

// GetRollSession retrieves an existing dice roll session
func (o *orchestrator) GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error) {
	if input == nil || input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}

	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dice session")
	}

	return &GetRollSessionOutput{Session: getOutput.Session}, nil
}

// ClearRollSession removes a dice roll session
func (o *orchestrator) ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error) {
	if input == nil || input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}

	deleteOutput, err := o.diceSessionRepo.Delete(ctx, dicesession.DeleteInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete dice session")
	}

	o.logger.Debug("dice session cleared",
		zap.String("entity_id", input.EntityID),
		zap.String("context", input.Context),
		zap.Int("rolls_deleted", deleteOutput.RollsDeleted),
	)

	return &ClearRollSessionOutput{RollsDeleted: deleteOutput.RollsDeleted}, nil
}

// RollAbilityScores rolls six ability scores, replacing any earlier session
func (o *orchestrator) RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error) {
	if input == nil || input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	method := input.Method
	if method == "" {
		method = MethodStandard
	}

	var (
		n          Notation
		dropLowest int
		rerollOnes bool
	)
	switch method {
	case MethodStandard:
		n, dropLowest = Notation{Count: 4, Size: 6}, 1
	case MethodClassic:
		n = Notation{Count: 3, Size: 6}
	case MethodHeroic:
		n, dropLowest, rerollOnes = Notation{Count: 4, Size: 6}, 1, true
	default:
		return nil, errors.InvalidArgumentf("unsupported rolling method: %s", method)
	}

	rolls := make([]dicesession.Roll, 0, abilityScoreCount)
	for i := range abilityScoreCount {
		kept, dropped, total, err := o.roll(n, dropLowest, rerollOnes)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll ability score %d", i+1)
		}
		rolls = append(rolls, dicesession.Roll{
			RollID:      o.idGen.Generate(),
			Notation:    n.String(),
			Dice:        kept,
			Dropped:     dropped,
			Total:       total,
			Description: fmt.Sprintf("Ability Score %d (%s)", i+1, method),
		})
	}

	createOutput, err := o.diceSessionRepo.Create(ctx, dicesession.CreateInput{
		EntityID: input.EntityID,
		Context:  ContextAbilityScores,
		Rolls:    rolls,
		TTL:      DefaultSessionTTL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ability score session")
	}

	o.logger.Debug("ability scores rolled",
		zap.String("entity_id", input.EntityID),
		zap.String("method", method),
		zap.Int("rolls", len(rolls)),
	)

	return &RollAbilityScoresOutput{
		Rolls:   rolls,
		Session: createOutput.Session,
	}, nil
}

// RollHitPoints rolls one hit die and adds the constitution modifier
func (o *orchestrator) RollHitPoints(ctx context.Context, input *RollHitPointsInput) (*RollHitPointsOutput, error) {
	if input == nil || input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	switch input.HitDie {
	case 6, 8, 10, 12:
	default:
		return nil, errors.InvalidArgumentf("invalid hit die: d%d", input.HitDie)
	}

	n := Notation{Count: 1, Size: input.HitDie, Modifier: input.ConModifier}
	kept, _, total, err := o.roll(n, 0, false)
	if err != nil {
		return nil, err
	}

	desc := input.Description
	if desc == "" {
		desc = fmt.Sprintf("Hit points (d%d)", input.HitDie)
	}
	roll := dicesession.Roll{
		RollID:      o.idGen.Generate(),
		Notation:    n.String(),
		Dice:        kept,
		Modifier:    n.Modifier,
		Total:       total,
		Description: desc,
	}

	session, err := o.appendRoll(ctx, input.EntityID, ContextHitPoints, roll, DefaultSessionTTL)
	if err != nil {
		return nil, err
	}

	return &RollHitPointsOutput{
		Roll:      &session.Rolls[len(session.Rolls)-1],
		HitPoints: max(total, 1),
	}, nil
}

// UseRolls marks the requested rolls as used and returns them
func (o *orchestrator) UseRolls(ctx context.Context, input *UseRollsInput) (*UseRollsOutput, error) {
	if input == nil || input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}
	if len(input.RollIDs) == 0 {
		return nil, errors.InvalidArgument("at least one roll ID is required")
	}

	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dice session")
	}
	session := getOutput.Session

	seen := make(map[string]bool, len(input.RollIDs))
	out := make([]dicesession.Roll, 0, len(input.RollIDs))
	for _, id := range input.RollIDs {
		if seen[id] {
			return nil, errors.InvalidArgumentf("roll %s requested twice", id)
		}
		seen[id] = true

		roll, ok := session.Roll(id)
		if !ok {
			return nil, errors.NotFoundf("roll %s not found", id)
		}
		if roll.Used {
			return nil, errors.FailedPreconditionf("roll %s already used", id)
		}
		roll.Used = true
		out = append(out, *roll)
	}

	if err := o.diceSessionRepo.Update(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to update dice session")
	}
	return &UseRollsOutput{Rolls: out}, nil
}
