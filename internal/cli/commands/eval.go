package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cardfile/internal/card"
	"github.com/leapstack-labs/cardfile/internal/script"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	var (
		cardIndex int
		stats     bool
		pack      string
	)

	cmd := &cobra.Command{
		Use:   "eval <set> [expression]",
		Short: "Evaluate scripts against the cards of a set",
		Long: `Evaluate a Starlark expression for every card of a set, or for one card
with --card. The globals set, game, style and card are bound; fields marked
no-script are hidden.

With --stats the statistics dimensions of the game are evaluated instead,
and with --pack the cards a pack type draws from are listed.`,
		Example: `  cardfile eval alpha.mse-set 'card.data["rarity"]'
  cardfile eval alpha.mse-set --card 0 'style.card_dpi'
  cardfile eval alpha.mse-set --stats
  cardfile eval alpha.mse-set --pack "Any card"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			obj, _, err := c.Packages.OpenFile(args[0])
			if err != nil {
				return err
			}
			set, ok := obj.(*card.Set)
			if !ok {
				return fmt.Errorf("%s is not a set", args[0])
			}
			env := script.NewEnv(c.Types, script.WithLogger(c.Logger))

			switch {
			case stats:
				return evalStats(cmd, c, env, set)
			case pack != "":
				return evalPack(cmd, c, env, set, pack)
			case len(args) < 2:
				return fmt.Errorf("an expression is required")
			case cardIndex >= 0:
				if cardIndex >= len(set.Cards) {
					return fmt.Errorf("card %d out of range (set has %d cards)", cardIndex, len(set.Cards))
				}
				v, err := env.EvalCard(set, set.Cards[cardIndex], args[1])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(c.Out, script.Text(v))
				return nil
			default:
				return evalEach(cmd, c, env, set, args[1])
			}
		},
	}

	cmd.Flags().IntVar(&cardIndex, "card", -1, "Evaluate for the card at this index only")
	cmd.Flags().BoolVar(&stats, "stats", false, "Evaluate the game's statistics dimensions")
	cmd.Flags().StringVar(&pack, "pack", "", "List the cards the named pack type draws from")
	return cmd
}

type cardValue struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

func evalEach(cmd *cobra.Command, c *CommandContext, env *script.Env, set *card.Set, expr string) error {
	values, err := env.EachCard(cmd.Context(), set, expr)
	if err != nil {
		return err
	}
	rows := make([]cardValue, len(values))
	for i, v := range values {
		rows[i] = cardValue{Index: i, Name: set.Cards[i].Value("name"), Value: script.Text(v)}
	}
	if ok, err := renderStructured(c.Out, c.Cfg.Output, rows); ok {
		return err
	}

	t := newTable(c.Out)
	t.AppendHeader(table.Row{"#", "Card", "Value"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Index, r.Name, r.Value})
	}
	t.Render()
	return nil
}

func evalStats(cmd *cobra.Command, c *CommandContext, env *script.Env, set *card.Set) error {
	dims, err := env.Statistics(cmd.Context(), set)
	if err != nil {
		return err
	}
	if ok, err := renderStructured(c.Out, c.Cfg.Output, dims); ok {
		return err
	}

	t := newTable(c.Out)
	t.AppendHeader(table.Row{"Dimension", "Value", "Cards"})
	for _, d := range dims {
		for _, b := range d.Buckets {
			t.AppendRow(table.Row{d.Name, b.Value, b.Count})
		}
	}
	t.Render()
	return nil
}

func evalPack(cmd *cobra.Command, c *CommandContext, env *script.Env, set *card.Set, name string) error {
	if set.Game == nil {
		return fmt.Errorf("set has no game")
	}
	var pack *card.PackType
	for _, p := range set.Game.PackTypes {
		if p.Name == name {
			pack = p
			break
		}
	}
	if pack == nil {
		return fmt.Errorf("game %q has no pack type %q", set.Game.UniqueName(), name)
	}

	cards, err := env.PackCards(cmd.Context(), set, pack)
	if err != nil {
		return err
	}
	names := make([]string, len(cards))
	for i, cd := range cards {
		names[i] = cd.Value("name")
	}
	if ok, err := renderStructured(c.Out, c.Cfg.Output, names); ok {
		return err
	}
	for _, n := range names {
		_, _ = fmt.Fprintln(c.Out, n)
	}
	_, _ = fmt.Fprintf(c.Out, "(%d cards, select %s)\n", len(cards), pack.Select)
	return nil
}
