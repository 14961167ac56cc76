package script

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/cardfile/internal/card"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// Predeclared global names bound for card scripts.
const (
	GlobalSet   = "set"
	GlobalGame  = "game"
	GlobalCard  = "card"
	GlobalStyle = "style"
)

// Env evaluates scripts against reflected objects.
type Env struct {
	types       *schema.Registry
	logger      *slog.Logger
	pool        *threadPool
	concurrency int
}

// Option configures an Env.
type Option func(*Env)

// WithLogger sets the logger. Script print() output goes to it at INFO.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Env) { e.logger = logger }
}

// WithConcurrency bounds how many cards are evaluated at once.
func WithConcurrency(n int) Option {
	return func(e *Env) { e.concurrency = n }
}

// NewEnv creates an evaluation environment over the given type registry.
func NewEnv(types *schema.Registry, opts ...Option) *Env {
	e := &Env{types: types, concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.concurrency <= 0 {
		e.concurrency = 1
	}
	e.pool = newThreadPool(e.concurrency, e.logger)
	return e
}

// Expose returns the Starlark view of obj.
func (e *Env) Expose(obj schema.Object) (starlark.Value, error) {
	return ToStarlark(e.types, obj)
}

// Eval evaluates a single expression with the given globals.
func (e *Env) Eval(name, expr string, globals starlark.StringDict) (starlark.Value, error) {
	thread := e.pool.get(name)
	defer e.pool.put(thread)

	v, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, name, expr, globals)
	if err != nil {
		return nil, &Error{Script: name, Expr: expr, Err: err}
	}
	return v, nil
}

// Globals binds set, game, style and card for evaluating a card script.
// c may be nil for set-level scripts.
func (e *Env) Globals(set *card.Set, c *card.Card) (starlark.StringDict, error) {
	globals := starlark.StringDict{}
	bind := func(name string, obj schema.Object) error {
		v, err := e.Expose(obj)
		if err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
		globals[name] = v
		return nil
	}

	if err := bind(GlobalSet, set); err != nil {
		return nil, err
	}
	if err := bind(GlobalGame, set.Game); err != nil {
		return nil, err
	}
	if c != nil {
		if err := bind(GlobalCard, c); err != nil {
			return nil, err
		}
		if err := bind(GlobalStyle, set.StyleFor(c)); err != nil {
			return nil, err
		}
	} else {
		if err := bind(GlobalStyle, set.StyleSheet.Get()); err != nil {
			return nil, err
		}
	}
	return globals, nil
}

// EvalCard evaluates expr for one card of set.
func (e *Env) EvalCard(set *card.Set, c *card.Card, expr string) (starlark.Value, error) {
	index := -1
	for i, sc := range set.Cards {
		if sc == c {
			index = i
			break
		}
	}
	return e.evalCard(set, index, c, expr)
}

func (e *Env) evalCard(set *card.Set, index int, c *card.Card, expr string) (starlark.Value, error) {
	globals, err := e.Globals(set, c)
	if err != nil {
		return nil, err
	}
	return e.Eval(cardName(index, c), expr, globals)
}

// EachCard evaluates expr for every card of set concurrently. Results are
// in card order.
func (e *Env) EachCard(ctx context.Context, set *card.Set, expr string) ([]starlark.Value, error) {
	results := make([]starlark.Value, len(set.Cards))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, c := range set.Cards {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := e.evalCard(set, i, c, expr)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Filter returns the cards of set for which expr is truthy.
func (e *Env) Filter(ctx context.Context, set *card.Set, expr string) ([]*card.Card, error) {
	values, err := e.EachCard(ctx, set, expr)
	if err != nil {
		return nil, err
	}
	var out []*card.Card
	for i, v := range values {
		if v.Truth() {
			out = append(out, set.Cards[i])
		}
	}
	return out, nil
}

// PackCards returns the cards a pack type draws from.
func (e *Env) PackCards(ctx context.Context, set *card.Set, pack *card.PackType) ([]*card.Card, error) {
	if pack.Filter == "" {
		return set.Cards, nil
	}
	cards, err := e.Filter(ctx, set, pack.Filter)
	if err != nil {
		return nil, fmt.Errorf("pack %q: %w", pack.Name, err)
	}
	return cards, nil
}

// Bucket is one value of a statistics dimension and how many cards have it.
type Bucket struct {
	Value string
	Count int
}

// Dimension holds the distribution of a set's cards along one dimension.
type Dimension struct {
	Name    string
	Buckets []Bucket
}

// Statistics evaluates every statistics dimension of the set's game.
// Buckets are ordered by descending count, then value.
func (e *Env) Statistics(ctx context.Context, set *card.Set) ([]Dimension, error) {
	if set.Game == nil {
		return nil, fmt.Errorf("set has no game")
	}

	var out []Dimension
	for _, dim := range set.Game.Dimensions() {
		values, err := e.EachCard(ctx, set, dim.Script)
		if err != nil {
			return nil, fmt.Errorf("dimension %q: %w", dim.Name, err)
		}
		counts := make(map[string]int)
		for _, v := range values {
			counts[Text(v)]++
		}
		d := Dimension{Name: dim.Name}
		for v, n := range counts {
			d.Buckets = append(d.Buckets, Bucket{Value: v, Count: n})
		}
		sort.Slice(d.Buckets, func(i, j int) bool {
			if d.Buckets[i].Count != d.Buckets[j].Count {
				return d.Buckets[i].Count > d.Buckets[j].Count
			}
			return d.Buckets[i].Value < d.Buckets[j].Value
		})
		out = append(out, d)
		e.logger.Debug("evaluated dimension", "dimension", dim.Name, "values", len(d.Buckets))
	}
	return out, nil
}

func cardName(index int, c *card.Card) string {
	name := "card"
	if index >= 0 {
		name = fmt.Sprintf("cards[%d]", index)
	}
	if n := c.Value("name"); n != "" {
		name += " (" + n + ")"
	}
	return name
}
