package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	compendiumsvc "github.com/KirkDiggler/rpg-compendium/internal/handlers/compendium"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration
	rawJSON    bool

	listName   string
	listLimit  int
	listOffset int
	maxLevel   int
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Query a running compendium server",
	Long:  `Client commands make real gRPC requests against compendium serve.`,
	// the client needs no database or redis
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var clientGetCmd = &cobra.Command{
	Use:   "get <type> <slug>",
	Short: "Fetch one entity with its full data",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *compendiumsvc.Client) error {
			resp, err := c.GetEntity(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

var clientListCmd = &cobra.Command{
	Use:   "list <type>",
	Short: "List entities of a type",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *compendiumsvc.Client) error {
			resp, err := c.ListEntities(ctx, compendiumsvc.ListRequest{
				Type:         args[0],
				NameContains: listName,
				Limit:        listLimit,
				Offset:       listOffset,
			})
			if err != nil {
				return err
			}
			if rawJSON {
				return printJSON(resp)
			}
			total := int(resp.GetFields()["total"].GetNumberValue())
			table := console.NewTable(fmt.Sprintf("%s (%d total)", args[0], total), "Slug", "Full Slug", "Name")
			for _, v := range resp.GetFields()["entities"].GetListValue().GetValues() {
				e := v.GetStructValue().GetFields()
				table.AddRow(e["slug"].GetStringValue(), e["full_slug"].GetStringValue(), e["name"].GetStringValue())
			}
			fmt.Println(table.Render())
			return nil
		})
	},
}

var clientClassSpellsCmd = &cobra.Command{
	Use:   "class-spells <class>",
	Short: "List the spells of a class",
	Long: `List the spell list of a class ordered by level then name. A subclass
slug lists its parent class spells. --max-level 0 lists only cantrips.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var level *int
		if cmd.Flags().Changed("max-level") {
			level = &maxLevel
		}
		return withClient(func(ctx context.Context, c *compendiumsvc.Client) error {
			resp, err := c.ListClassSpells(ctx, args[0], level)
			if err != nil {
				return err
			}
			if rawJSON {
				return printJSON(resp)
			}
			spells := resp.GetFields()["spells"].GetListValue().GetValues()
			table := console.NewTable(fmt.Sprintf("%s spells (%d)", args[0], len(spells)), "Level", "Slug", "Name")
			for _, v := range spells {
				s := v.GetStructValue().GetFields()
				table.AddRow(strconv.Itoa(int(s["level"].GetNumberValue())), s["slug"].GetStringValue(), s["name"].GetStringValue())
			}
			fmt.Println(table.Render())
			return nil
		})
	},
}

func init() {
	clientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	clientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	clientCmd.PersistentFlags().BoolVar(&rawJSON, "json", false, "Print the raw response")

	clientListCmd.Flags().StringVar(&listName, "name", "", "Only names containing this text")
	clientListCmd.Flags().IntVar(&listLimit, "limit", 0, "Page size (server default when 0)")
	clientListCmd.Flags().IntVar(&listOffset, "offset", 0, "Rows to skip")
	clientClassSpellsCmd.Flags().IntVar(&maxLevel, "max-level", 9, "Highest spell level to list")

	clientCmd.AddCommand(clientGetCmd)
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientClassSpellsCmd)
}

func withClient(fn func(ctx context.Context, c *compendiumsvc.Client) error) error {
	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return fn(ctx, compendiumsvc.NewClient(conn))
}

func printJSON(msg *structpb.Struct) error {
	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
