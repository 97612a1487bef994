package world

import (
	"context"
	"fmt"
)

// FurniturePeriod is the number of ticks between periodic furniture state
// changes.
const FurniturePeriod = 24

// ContentSource supplies titles for media furniture. The fetch from an
// external service lives outside the core; sources are injected.
type ContentSource interface {
	Titles() []string
}

// StaticContent is a fixed list of titles.
type StaticContent []string

func (c StaticContent) Titles() []string { return c }

var defaultShows = StaticContent{
	"The Lighthouse Keepers",
	"Midnight Bakery",
	"Harbor Tales",
}

var defaultArticles = StaticContent{
	"Digital pet craze returns after 25 years",
	"Community garden doubles its harvest",
	"Local observatory spots a new comet",
}

// Furniture is a placed, persistent interactive object in a space.
type Furniture interface {
	ID() string
	// Type is the furniture type symbol.
	Type() string
	// Tick simulates the furniture piece at time for one tick.
	Tick(ctx context.Context, time int) error
	// Use performs the furniture piece's use hook.
	Use(ctx context.Context) error
	fmt.Stringer
}

type furnitureItem struct {
	id   string
	typ  string
	game *Game
}

func (f *furnitureItem) ID() string                      { return f.id }
func (f *furnitureItem) Type() string                    { return f.typ }
func (f *furnitureItem) Tick(context.Context, int) error { return nil }
func (f *furnitureItem) Use(context.Context) error       { return nil }
func (f *furnitureItem) String() string                  { return f.typ }

func (f *furnitureItem) setField(ctx context.Context, field, value string) error {
	if err := f.game.rdb.HSet(ctx, f.id, field, value).Err(); err != nil {
		return fmt.Errorf("failed to update furniture %s: %w", f.id, err)
	}
	return nil
}

// Houseplant blossoms and wilts periodically.
type Houseplant struct {
	furnitureItem
	State string
}

func (h *Houseplant) Tick(ctx context.Context, time int) error {
	if (time+1)%FurniturePeriod != 0 {
		return nil
	}
	return h.setField(ctx, "state", h.game.choice([]string{"🪴", "🌺"}))
}

func (h *Houseplant) String() string { return h.State }

// Television shows a current TV show, zapped on use.
type Television struct {
	furnitureItem
	Show string
}

func (t *Television) Use(ctx context.Context) error {
	return t.setField(ctx, "show", t.game.choice(t.game.shows.Titles()))
}

// Newspaper holds an open news article, flipped on use.
type Newspaper struct {
	furnitureItem
	Article string
}

func (n *Newspaper) Use(ctx context.Context) error {
	return n.setField(ctx, "article", n.game.choice(n.game.articles.Titles()))
}

// Palette is a canvas and palette; a painting is finished periodically.
type Palette struct {
	furnitureItem
	State string
}

func (p *Palette) Tick(ctx context.Context, time int) error {
	if (time+1)%FurniturePeriod != 0 {
		return nil
	}
	return p.setField(ctx, "state", p.game.choice([]string{"🎨", "🖼️"}))
}

func (p *Palette) String() string { return p.State }

// parseFurniture constructs the typed variant for a stored furniture
// record, dispatching on the stored type tag.
func parseFurniture(data map[string]string, g *Game) (Furniture, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: furniture", ErrNotFound)
	}
	base := furnitureItem{id: data["id"], typ: data["type"], game: g}
	switch data["type"] {
	case "🪴":
		return &Houseplant{furnitureItem: base, State: data["state"]}, nil
	case "📺":
		return &Television{furnitureItem: base, Show: data["show"]}, nil
	case "🗞️":
		return &Newspaper{furnitureItem: base, Article: data["article"]}, nil
	case "🎨":
		return &Palette{furnitureItem: base, State: data["state"]}, nil
	default:
		if _, ok := FurnitureMaterial[data["type"]]; !ok {
			return nil, fmt.Errorf("%w: furniture type %s", ErrUnknownItem, data["type"])
		}
		return &base, nil
	}
}

// createFurniture writes a new furniture record of the given type and
// returns the typed variant.
func createFurniture(ctx context.Context, g *Game, id, typ string) (Furniture, error) {
	data := map[string]string{"id": id, "type": typ}
	switch typ {
	case "🪴":
		data["state"] = "🪴"
	case "📺":
		data["show"] = g.choice(g.shows.Titles())
	case "🗞️":
		data["article"] = g.choice(g.articles.Titles())
	case "🎨":
		data["state"] = "🎨"
	}
	if err := g.rdb.HSet(ctx, id, data).Err(); err != nil {
		return nil, fmt.Errorf("failed to create furniture %s: %w", id, err)
	}
	return parseFurniture(data, g)
}
