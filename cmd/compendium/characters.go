package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
	characterrepo "github.com/KirkDiggler/rpg-compendium/internal/repositories/character"
)

var auditPurge bool

var charactersAuditCmd = &cobra.Command{
	Use:   "characters:audit",
	Short: "Find stored characters that can no longer be loaded",
	Long:  `Scan every stored character and list those that fail to decode. --purge deletes them.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		a, err := openApp(ctx, openOptions{skipMigrate: true, wizard: true})
		if err != nil {
			return err
		}
		defer a.close()

		out, err := a.characters.Audit(ctx, characterrepo.AuditInput{})
		if err != nil {
			return err
		}
		if len(out.Corrupt) == 0 {
			fmt.Println(console.Status(true, fmt.Sprintf("Checked %d characters, none corrupt", out.Checked)))
			return nil
		}

		table := console.NewTable(fmt.Sprintf("Corrupt characters (%d of %d)", len(out.Corrupt), out.Checked), "ID", "Reason")
		ids := make([]string, 0, len(out.Corrupt))
		for _, c := range out.Corrupt {
			table.AddRow(c.ID, c.Reason)
			ids = append(ids, c.ID)
		}
		fmt.Println(table.Render())

		if !auditPurge {
			fmt.Println(console.MutedStyle.Render("Run again with --purge to delete them"))
			return nil
		}
		purged, err := a.characters.Purge(ctx, characterrepo.PurgeInput{IDs: ids})
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d characters\n", purged.Removed)
		return nil
	},
}

func init() {
	charactersAuditCmd.Flags().BoolVar(&auditPurge, "purge", false, "Delete the corrupt characters")
}
