package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"scryfall/internal/client"
	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
	"scryfall/internal/record"
)

var setsOpts = &struct {
	Types   []string
	Digital bool
}{}

var setsCommand = &cobra.Command{
	Use:   "sets [code]",
	Short: "List sets, or show one set",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		var sets []*kinds.Set
		if len(args) == 1 {
			set, err := e.client.Set(ctx, args[0])
			if err != nil {
				return err
			}
			sets = []*kinds.Set{set}
		} else {
			col, err := e.client.Sets(ctx)
			if err != nil {
				return err
			}
			if sets, err = object.AllOf[*kinds.Set](ctx, col); err != nil {
				return err
			}
			sets = lo.Filter(sets, func(s *kinds.Set, _ int) bool {
				return (setsOpts.Digital || !s.Digital) &&
					(len(setsOpts.Types) == 0 || slices.Contains(setsOpts.Types, string(s.SetType)))
			})
		}

		if ok, err := printJSON(cmd, lo.Map(sets, func(s *kinds.Set, _ int) record.Record { return s.Record() })); ok {
			return err
		}
		t := newTable(cmd.OutOrStdout(), "CODE", "NAME", "TYPE", "RELEASED", "CARDS")
		for _, s := range sets {
			t.row(strings.ToUpper(s.Code), s.Name, string(s.SetType), date(s.ReleasedAt), count(s.CardCount))
		}
		return t.flush()
	},
}

func init() {
	flags := setsCommand.Flags()
	flags.StringSliceVar(&setsOpts.Types, "type", nil, "Only sets of these types (expansion, core, masters, ...)")
	flags.BoolVar(&setsOpts.Digital, "digital", false, "Include digital-only sets")
}

var symbolsCommand = &cobra.Command{
	Use:   "symbols",
	Short: "List the card symbology",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		col, err := e.client.Symbols(ctx)
		if err != nil {
			return err
		}
		symbols, err := object.AllOf[*kinds.CardSymbol](ctx, col)
		if err != nil {
			return err
		}

		if ok, err := printJSON(cmd, lo.Map(symbols, func(s *kinds.CardSymbol, _ int) record.Record { return s.Record() })); ok {
			return err
		}
		t := newTable(cmd.OutOrStdout(), "SYMBOL", "MEANING", "CMC", "MANA")
		for _, s := range symbols {
			cmc := "-"
			if s.CMC >= 0 {
				cmc = humanize.Ftoa(s.CMC)
			}
			t.row(s.Symbol, s.English, cmc, fmt.Sprint(s.RepresentsMana))
		}
		return t.flush()
	},
}

var manaCommand = &cobra.Command{
	Use:   "mana <cost>",
	Short: "Parse a mana cost, e.g. 2WW or {X}{R}",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		cost, err := e.client.ParseMana(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, cost.Record()); ok {
			return err
		}
		colors := strings.Join(lo.Map(cost.Colors, func(c kinds.Color, _ int) string { return string(c) }), "")
		fmt.Fprintf(cmd.OutOrStdout(), "%s  cmc %s  colors %s\n", cost.Cost, humanize.Ftoa(cost.CMC), orDash(colors))
		return nil
	},
}

var catalogCommand = &cobra.Command{
	Use:   "catalog <name>",
	Short: "Print a catalog of valid values",
	Long: "Print a catalog of valid values. Known catalogs:\n\n  " +
		strings.Join(lo.Map(client.CatalogNames, func(n client.CatalogName, _ int) string { return string(n) }), "\n  "),
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(client.CatalogNames, func(n client.CatalogName, _ int) string { return string(n) }),
			cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		name := client.CatalogName(args[0])
		if !slices.Contains(client.CatalogNames, name) {
			return fmt.Errorf("unknown catalog %q", args[0])
		}
		cat, err := e.client.Catalog(cmd.Context(), name)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, cat.Data); ok {
			return err
		}
		for _, v := range cat.Data {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}
