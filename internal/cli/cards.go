package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"scryfall/internal/client"
	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
	"scryfall/internal/record"
)

var searchOpts = &struct {
	client.SearchOptions
	Limit int
}{}

var searchCommand = &cobra.Command{
	Use:   "search <query>",
	Short: "Search cards",
	Long: `Search cards with the full-text query syntax and print one line per card.

Usage examples:

1. Green elves, cheapest first:

	scryfall search "t:elf c:g" --order usd --dir asc

2. Every printing of a card:

	scryfall search '!"Llanowar Elves"' --unique prints
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		query := strings.Join(args, " ")

		col, err := e.client.Search(ctx, query, searchOpts.SearchOptions)
		if object.IsNotFound(err) {
			fmt.Fprintf(cmd.OutOrStdout(), "No cards match %q\n", query)
			return nil
		}
		if err != nil {
			return err
		}

		var cards []*kinds.Card
		for obj, err := range col.Contents(ctx) {
			if err != nil {
				return err
			}
			if c, ok := obj.(*kinds.Card); ok {
				cards = append(cards, c)
			}
			if searchOpts.Limit > 0 && len(cards) >= searchOpts.Limit {
				break
			}
		}

		if ok, err := printJSON(cmd, lo.Map(cards, func(c *kinds.Card, _ int) record.Record { return c.Record() })); ok {
			return err
		}
		t := newTable(cmd.OutOrStdout(), "NAME", "COST", "TYPE", "SET", "#", "RARITY", "USD")
		for _, c := range cards {
			t.row(c.Name, orDash(c.ManaCost), c.TypeLine, strings.ToUpper(c.Set), c.CollectorNumber, string(c.Rarity), orDash(c.Prices.USD))
		}
		if err := t.flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s of %s cards\n", count(len(cards)), count(col.TotalCards()))
		for _, w := range col.Warnings() {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	flags := searchCommand.Flags()
	flags.StringVar(&searchOpts.Unique, "unique", "", "Duplicate strategy: cards, art or prints")
	flags.StringVar(&searchOpts.Order, "order", "", "Sort order: name, set, released, rarity, color, usd, cmc, edhrec, ...")
	flags.StringVar(&searchOpts.Dir, "dir", "", "Sort direction: auto, asc or desc")
	flags.BoolVar(&searchOpts.IncludeExtras, "include-extras", false, "Include tokens, planes and other extras")
	flags.BoolVar(&searchOpts.IncludeVariations, "include-variations", false, "Include rare printing variations")
	flags.IntVar(&searchOpts.Limit, "limit", 0, "Stop after this many cards (0 for all)")
}

var cardOpts = &struct {
	Exact   bool
	Set     string
	Rulings bool
}{}

var cardCommand = &cobra.Command{
	Use:   "card <id|name|set/number>",
	Short: "Show one card",
	Long: `Look a card up by id, by "set/collector-number", or by name. Names are
matched fuzzily unless --exact is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		ref := strings.Join(args, " ")

		var card *kinds.Card
		if id, perr := uuid.Parse(ref); perr == nil {
			card, err = e.client.Card(ctx, id)
		} else if set, number, ok := strings.Cut(ref, "/"); ok && !strings.Contains(set, " ") {
			card, err = e.client.CardBySet(ctx, set, number)
		} else {
			card, err = e.client.Named(ctx, ref, !cardOpts.Exact, cardOpts.Set)
		}
		if err != nil {
			return err
		}

		var rulings []*kinds.Ruling
		if cardOpts.Rulings {
			col, err := e.client.Rulings(ctx, card.ID)
			if err != nil {
				return err
			}
			if rulings, err = object.AllOf[*kinds.Ruling](ctx, col); err != nil {
				return err
			}
		}

		if ok, err := printJSON(cmd, card.Record()); ok {
			return err
		}
		printCard(cmd, card)
		for _, r := range rulings {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s (%s)\n  %s\n", date(r.PublishedAt), r.Source, r.Comment)
		}
		return nil
	},
}

func init() {
	flags := cardCommand.Flags()
	flags.BoolVar(&cardOpts.Exact, "exact", false, "Require an exact name match")
	flags.StringVar(&cardOpts.Set, "set", "", "Restrict a name lookup to this set code")
	flags.BoolVar(&cardOpts.Rulings, "rulings", false, "Print the card's rulings")
}

var randomQuery string

var randomCommand = &cobra.Command{
	Use:   "random",
	Short: "Show a random card",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		card, err := e.client.Random(cmd.Context(), randomQuery)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, card.Record()); ok {
			return err
		}
		printCard(cmd, card)
		return nil
	},
}

func init() {
	randomCommand.Flags().StringVarP(&randomQuery, "query", "q", "", "Restrict the draw to cards matching this search")
}

func printCard(cmd *cobra.Command, c *kinds.Card) {
	w := cmd.OutOrStdout()
	faces := c.Faces
	if len(faces) == 0 {
		fmt.Fprintf(w, "%s  %s\n%s\n", c.Name, c.ManaCost, c.TypeLine)
		if c.OracleText != "" {
			fmt.Fprintln(w, c.OracleText)
		}
		printStats(w, c.Power, c.Toughness, c.Loyalty)
	} else {
		for i, f := range faces {
			if i > 0 {
				fmt.Fprintln(w, "//")
			}
			fmt.Fprintf(w, "%s  %s\n%s\n", f.Name, f.ManaCost, f.TypeLine)
			if f.OracleText != "" {
				fmt.Fprintln(w, f.OracleText)
			}
			printStats(w, f.Power, f.Toughness, f.Loyalty)
		}
	}
	fmt.Fprintf(w, "\n%s #%s · %s · %s\n", c.SetName, c.CollectorNumber, c.Rarity, orDash(c.Artist))

	legal := lo.Filter(legalityFormats, func(f string, _ int) bool { return c.LegalIn(f).Playable() })
	if len(legal) > 0 {
		fmt.Fprintf(w, "Legal in %s\n", strings.Join(legal, ", "))
	}
}

func printStats(w io.Writer, power, toughness, loyalty string) {
	switch {
	case power != "" || toughness != "":
		fmt.Fprintf(w, "%s/%s\n", power, toughness)
	case loyalty != "":
		fmt.Fprintf(w, "Loyalty %s\n", loyalty)
	}
}

var legalityFormats = []string{"standard", "pioneer", "modern", "legacy", "vintage", "commander", "pauper"}
