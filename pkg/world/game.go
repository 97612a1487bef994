package world

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pocketpet/pocketpet/internal/storage"
)

// spacesByChatKey is the global chat to space index.
const spacesByChatKey = "spaces_by_chat"

// initialPetNutrition is the nutrition a freshly laid egg starts with, i.e.
// the number of ticks until the first pet-hungry event.
const initialPetNutrition = 8

// Options configures a Game.
type Options struct {
	// Debug enables debug-only operations like Space.Obtain.
	Debug bool
	// TickInterval is the wall-clock duration of one simulation tick.
	TickInterval time.Duration
	// Rand is the random source for activity and content draws. A seeded
	// source makes the simulation deterministic for tests.
	Rand *rand.Rand
	// Shows supplies television content.
	Shows ContentSource
	// Articles supplies newspaper content.
	Articles ContentSource
}

// Game is the world-state engine. All entity operations reach the store
// through an explicit Game handle; there is no ambient global state.
type Game struct {
	rdb      *redis.Client
	logger   *slog.Logger
	debug    bool
	interval time.Duration
	shows    ContentSource
	articles ContentSource

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewGame creates a game over the given store connection.
func NewGame(rdb *redis.Client, logger *slog.Logger, opts Options) *Game {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Hour
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Shows == nil {
		opts.Shows = defaultShows
	}
	if opts.Articles == nil {
		opts.Articles = defaultArticles
	}
	return &Game{
		rdb:      rdb,
		logger:   logger,
		debug:    opts.Debug,
		interval: opts.TickInterval,
		shows:    opts.Shows,
		articles: opts.Articles,
		rand:     opts.Rand,
	}
}

// Now returns the current simulation tick derived from the wall clock.
func (g *Game) Now() int {
	return int(time.Now().UnixNano() / int64(g.interval))
}

// choice picks a uniformly random element of candidates.
func (g *Game) choice(candidates []string) string {
	g.randMu.Lock()
	defer g.randMu.Unlock()
	return candidates[g.rand.Intn(len(candidates))]
}

// intn draws a uniformly random number in [0, n).
func (g *Game) intn(n int) int {
	g.randMu.Lock()
	defer g.randMu.Unlock()
	return g.rand.Intn(n)
}

// float draws a uniformly random number in [0, 1).
func (g *Game) float() float64 {
	g.randMu.Lock()
	defer g.randMu.Unlock()
	return g.rand.Float64()
}

func newID(kind string) string {
	return kind + ":" + uuid.NewString()
}

// CreateSpace creates a new space for chat, together with its pet, initial
// blueprints and stories. If the chat already has a space, ErrDuplicateChat
// is raised.
func (g *Game) CreateSpace(ctx context.Context, chat string) (*Space, error) {
	spaceID := newID("Space")
	petID := newID("Pet")
	now := g.Now()

	spaceData := map[string]string{
		"id":                      spaceID,
		"chat":                    chat,
		"time":                    strconv.Itoa(now),
		"resources":               "",
		"tools":                   "👋 ✏️ 🧺 🔨 🧽",
		"meadow_vegetable_growth": strconv.Itoa(MeadowVegetableGrowthMax),
		"woods_growth":            strconv.Itoa(WoodsGrowthMax),
		"trail_supply":            strconv.Itoa(TrailSupplyMax),
		"pet_id":                  petID,
	}
	petData := map[string]string{
		"id":          petID,
		"space_id":    spaceID,
		"name":        "Pip",
		"hatched":     "",
		"nutrition":   strconv.Itoa(initialPetNutrition),
		"dirt":        "0",
		"fur":         "0",
		"clothing":    "",
		"activity_id": "",
	}
	blueprints := []string{
		"🪓", "✂️", "🍳", "🚿", "🧭", "🪃", "⚾", "🧸", "🛋️", "🪴", "⛲", "📺", "🗞️", "🎨",
	}
	stories := []map[string]string{
		{
			"id":          newID("IntroStory"),
			"space_id":    spaceID,
			"chapter":     "start",
			"update_time": strconv.Itoa(now),
		},
		{
			"id":          newID("SewingStory"),
			"space_id":    spaceID,
			"chapter":     "scissors",
			"update_time": strconv.Itoa(now),
		},
	}

	err := storage.Atomic(ctx, g.rdb, func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, spacesByChatKey, chat).Result()
		if err != nil {
			return fmt.Errorf("failed to check chat index: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrDuplicateChat, chat)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, spaceID, spaceData)
			pipe.HSet(ctx, petID, petData)
			members := make([]redis.Z, len(blueprints))
			for i, blueprint := range blueprints {
				members[i] = redis.Z{Score: BlueprintWeights[blueprint], Member: blueprint}
			}
			pipe.ZAdd(ctx, blueprintsKey(spaceID), members...)
			for _, story := range stories {
				pipe.HSet(ctx, story["id"], story)
				pipe.SAdd(ctx, storiesKey(spaceID), story["id"])
			}
			pipe.HSet(ctx, spacesByChatKey, chat, spaceID)
			return nil
		})
		return err
	}, spacesByChatKey)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Created space", "space_id", spaceID, "chat", chat)
	return parseSpace(spaceData, g)
}

// GetSpace fetches the space with the given id.
func (g *Game) GetSpace(ctx context.Context, id string) (*Space, error) {
	data, err := g.rdb.HGetAll(ctx, id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load space: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return parseSpace(data, g)
}

// GetSpaces fetches all spaces.
func (g *Game) GetSpaces(ctx context.Context) ([]*Space, error) {
	ids, err := g.rdb.HVals(ctx, spacesByChatKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chat index: %w", err)
	}
	spaces := make([]*Space, 0, len(ids))
	for _, id := range ids {
		space, err := g.GetSpace(ctx, id)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, space)
	}
	return spaces, nil
}

// GetSpaceByChat fetches the space belonging to chat.
func (g *Game) GetSpaceByChat(ctx context.Context, chat string) (*Space, error) {
	id, err := g.rdb.HGet(ctx, spacesByChatKey, chat).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: chat %s", ErrNotFound, chat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chat index: %w", err)
	}
	return g.GetSpace(ctx, id)
}

// GetPet fetches the pet with the given id.
func (g *Game) GetPet(ctx context.Context, id string) (*Pet, error) {
	data, err := g.rdb.HGetAll(ctx, id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load pet: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return parsePet(data, g), nil
}

// GetFurnitureItem fetches the furniture item with the given id.
func (g *Game) GetFurnitureItem(ctx context.Context, id string) (Furniture, error) {
	data, err := g.rdb.HGetAll(ctx, id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load furniture: %w", err)
	}
	return parseFurniture(data, g)
}

// Tokenize splits a command string into discrete symbols: emoji (with an
// attached variation selector, if any) become single tokens and runs of
// other characters become word tokens.
func Tokenize(command string) []string {
	var tokens []string
	runes := []rune(command)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.Is(unicode.So, r):
			token := string(r)
			// Variation selectors belong to the preceding emoji.
			if i+1 < len(runes) && (runes[i+1] == '\ufe0e' || runes[i+1] == '\ufe0f') {
				token += string(runes[i+1])
				i++
			}
			tokens = append(tokens, token)
			i++
		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) && !unicode.Is(unicode.So, runes[i]) {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
		}
	}
	return tokens
}
