package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
)

var cacheTypes []string

var cacheClearCmd = &cobra.Command{
	Use:   "cache:clear",
	Short: "Drop cached entities from Redis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		types, err := parseCacheTypes()
		if err != nil {
			return err
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		a, err := openApp(ctx, openOptions{skipMigrate: true, redis: true})
		if err != nil {
			return err
		}
		defer a.close()

		if len(types) == 0 {
			if err := a.cache.InvalidateAll(ctx); err != nil {
				return err
			}
			fmt.Println("Cleared every cached entity")
			return nil
		}
		for _, t := range types {
			if err := a.cache.Invalidate(ctx, t); err != nil {
				return err
			}
			fmt.Printf("Cleared cached %s entities\n", t)
		}
		return nil
	},
}

var cacheWarmCmd = &cobra.Command{
	Use:   "cache:warm",
	Short: "Load entities from SQLite into Redis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		types, err := parseCacheTypes()
		if err != nil {
			return err
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		a, err := openApp(ctx, openOptions{skipMigrate: true, redis: true})
		if err != nil {
			return err
		}
		defer a.close()

		counts, err := a.cache.Warm(ctx, types)
		if err != nil {
			return err
		}
		table := console.NewTable("Warmed cache", "Type", "Entities")
		for _, t := range dnd5e.AllEntityTypes() {
			if n, ok := counts[t]; ok {
				table.AddRow(string(t), strconv.Itoa(n))
			}
		}
		fmt.Println(table.Render())
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{cacheClearCmd, cacheWarmCmd} {
		cmd.Flags().StringSliceVar(&cacheTypes, "type", nil, "Only these entity types, e.g. --type=spell,class")
	}
}

func parseCacheTypes() ([]dnd5e.EntityType, error) {
	var out []dnd5e.EntityType
	for _, s := range cacheTypes {
		t, ok := dnd5e.ParseEntityType(s)
		if !ok {
			return nil, errors.InvalidArgumentf("unknown entity type %q", s)
		}
		out = append(out, t)
	}
	return out, nil
}
