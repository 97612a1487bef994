package world

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/pocketpet/pocketpet/internal/storage"
)

// Growth counter bounds.
const (
	// MeadowVegetableGrowthMax is the level at which a vegetable is fully
	// grown.
	MeadowVegetableGrowthMax = 8 - 1
	// WoodsGrowthMax is the level at which wood is fully grown.
	WoodsGrowthMax = 8 - 1
	// TrailSupplyMax is the level at which a resource is in supply on the
	// hiking trail.
	TrailSupplyMax = 24 - 1
)

// Standalone pet activities.
const (
	ActivitySleep  = "💤"
	ActivityLeaves = "🍃"
)

func furnitureListKey(spaceID string) string { return spaceID + ".furniture" }
func blueprintsKey(spaceID string) string    { return spaceID + ".blueprints" }
func storiesKey(spaceID string) string       { return spaceID + ".stories" }
func charactersKey(spaceID string) string    { return spaceID + ".characters" }

// Space is the persistent game world of a single chat.
type Space struct {
	ID                    string
	Chat                  string
	Time                  int
	Items                 []string
	Tools                 []string
	MeadowVegetableGrowth int
	WoodsGrowth           int
	TrailSupply           int
	PetID                 string

	game *Game
}

func parseSpace(data map[string]string, g *Game) (*Space, error) {
	s := &Space{
		ID:    data["id"],
		Chat:  data["chat"],
		Items: strings.Fields(data["resources"]),
		Tools: strings.Fields(data["tools"]),
		PetID: data["pet_id"],
		game:  g,
	}
	for field, target := range map[string]*int{
		"time":                    &s.Time,
		"meadow_vegetable_growth": &s.MeadowVegetableGrowth,
		"woods_growth":            &s.WoodsGrowth,
		"trail_supply":            &s.TrailSupply,
	} {
		value, err := strconv.Atoi(data[field])
		if err != nil {
			return nil, fmt.Errorf("bad space record %s field %s: %w", data["id"], field, err)
		}
		*target = value
	}
	return s, nil
}

// Refresh returns a fresh copy of the space.
func (s *Space) Refresh(ctx context.Context) (*Space, error) {
	return s.game.GetSpace(ctx, s.ID)
}

// GetPet returns the residing pet.
func (s *Space) GetPet(ctx context.Context) (*Pet, error) {
	return s.game.GetPet(ctx, s.PetID)
}

// GetBlueprints returns the learned blueprints in display order.
func (s *Space) GetBlueprints(ctx context.Context) ([]string, error) {
	blueprints, err := s.game.rdb.ZRange(ctx, blueprintsKey(s.ID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprints: %w", err)
	}
	return blueprints, nil
}

// GetFurniture returns the owned furniture in placement order.
func (s *Space) GetFurniture(ctx context.Context) ([]Furniture, error) {
	ids, err := s.game.rdb.LRange(ctx, furnitureListKey(s.ID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read furniture list: %w", err)
	}
	items := make([]Furniture, 0, len(ids))
	for _, id := range ids {
		item, err := s.game.GetFurnitureItem(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetCharacters returns the present characters.
func (s *Space) GetCharacters(ctx context.Context) ([]*Character, error) {
	ids, err := s.game.rdb.LRange(ctx, charactersKey(s.ID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read character list: %w", err)
	}
	characters := make([]*Character, 0, len(ids))
	for _, id := range ids {
		data, err := s.game.rdb.HGetAll(ctx, id).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load character: %w", err)
		}
		if len(data) == 0 {
			continue
		}
		characters = append(characters, parseCharacter(data, s.game))
	}
	return characters, nil
}

// GetStories returns all ongoing stories.
func (s *Space) GetStories(ctx context.Context) ([]Story, error) {
	ids, err := s.game.rdb.SMembers(ctx, storiesKey(s.ID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read story set: %w", err)
	}
	stories := make([]Story, 0, len(ids))
	for _, id := range ids {
		data, err := s.game.rdb.HGetAll(ctx, id).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load story: %w", err)
		}
		if len(data) == 0 {
			continue
		}
		story, err := parseStory(data, s.game)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, nil
}

// TellStories continues all ongoing stories. A failure of one story does not
// halt the others.
func (s *Space) TellStories(ctx context.Context) error {
	stories, err := s.GetStories(ctx)
	if err != nil {
		return err
	}
	for _, story := range stories {
		if err := story.Tell(ctx); err != nil && !errors.Is(err, ErrNotFound) {
			s.game.logger.Error("Failed to tell story", "story_id", story.ID(), "error", err)
		}
	}
	return nil
}

// Obtain grants the given items out of thin air. Only available in debug
// mode.
func (s *Space) Obtain(ctx context.Context, items ...string) error {
	if !s.game.debug {
		return ErrDebugDisabled
	}
	for _, item := range items {
		if !knownItem(item) {
			return fmt.Errorf("%w: %s", ErrUnknownItem, item)
		}
	}

	var tools, goods []string
	for _, item := range items {
		if inCategory("tool", item) {
			tools = append(tools, item)
		} else {
			goods = append(goods, item)
		}
	}

	return storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		stock, toolStock, err := readInventory(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		stock = sortItems(append(stock, goods...))
		toolStock = sortItems(append(toolStock, tools...))
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.ID, map[string]string{
				"resources": strings.Join(stock, " "),
				"tools":     strings.Join(toolStock, " "),
			})
			return nil
		})
		return err
	}, s.ID)
}

// Gather gathers available resources from the meadow and returns a receipt.
// If the vegetables are not fully grown yet, the receipt is empty.
func (s *Space) Gather(ctx context.Context) ([]string, error) {
	var gathered []string
	err := storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		gathered = nil
		values, err := hashFields(ctx, tx, s.ID, "resources", "meadow_vegetable_growth")
		if err != nil {
			return err
		}
		items := strings.Fields(values[0])
		growth, err := strconv.Atoi(values[1])
		if err != nil {
			return fmt.Errorf("bad space record %s: %w", s.ID, err)
		}
		if growth < MeadowVegetableGrowthMax {
			return nil
		}

		gathered = []string{ItemVegetable, ItemRock}
		items = sortItems(append(items, gathered...))
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.ID, map[string]string{
				"resources":               strings.Join(items, " "),
				"meadow_vegetable_growth": "0",
			})
			return nil
		})
		return err
	}, s.ID)
	return gathered, err
}

// ChopWood chops available wood from the woods and returns a receipt. An
// axe is required.
func (s *Space) ChopWood(ctx context.Context) ([]string, error) {
	var wood []string
	err := storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		wood = nil
		values, err := hashFields(ctx, tx, s.ID, "resources", "tools", "woods_growth")
		if err != nil {
			return err
		}
		items := strings.Fields(values[0])
		tools := strings.Fields(values[1])
		growth, err := strconv.Atoi(values[2])
		if err != nil {
			return fmt.Errorf("bad space record %s: %w", s.ID, err)
		}
		if !contains(tools, ToolAxe) {
			return fmt.Errorf("%w: %s", ErrMissingTool, ToolAxe)
		}
		if growth < WoodsGrowthMax {
			return nil
		}

		wood = []string{ItemWood}
		items = sortItems(append(items, wood...))
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.ID, map[string]string{
				"resources":    strings.Join(items, " "),
				"woods_growth": "0",
			})
			return nil
		})
		return err
	}, s.ID)
	return wood, err
}

// Craft crafts a new object given by blueprint. For furniture blueprints the
// created furniture item is returned; for tool blueprints the tool is added
// to the space's tools and the result is nil.
func (s *Space) Craft(ctx context.Context, blueprint string) (Furniture, error) {
	if _, ok := FurnitureMaterial[blueprint]; ok {
		return s.craftFurniture(ctx, blueprint)
	}
	return nil, s.craftTool(ctx, blueprint)
}

func (s *Space) craftTool(ctx context.Context, blueprint string) error {
	return storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		stock, tools, err := readInventory(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		if err := checkBlueprint(ctx, tx, s.ID, blueprint); err != nil {
			return err
		}
		material, ok := ToolMaterial[blueprint]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownBlueprint, blueprint)
		}
		stock, ok = takeItems(stock, material)
		if !ok {
			return fmt.Errorf("%w: crafting %s", ErrInsufficientResources, blueprint)
		}
		tools = sortItems(append(tools, blueprint))

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.ID, map[string]string{
				"resources": strings.Join(stock, " "),
				"tools":     strings.Join(tools, " "),
			})
			return nil
		})
		return err
	}, s.ID)
}

func (s *Space) craftFurniture(ctx context.Context, blueprint string) (Furniture, error) {
	furnitureID := newID("Furniture")

	err := storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		values, err := hashFields(ctx, tx, s.ID, "resources")
		if err != nil {
			return err
		}
		stock := strings.Fields(values[0])
		if err := checkBlueprint(ctx, tx, s.ID, blueprint); err != nil {
			return err
		}
		stock, ok := takeItems(stock, FurnitureMaterial[blueprint])
		if !ok {
			return fmt.Errorf("%w: crafting %s", ErrInsufficientResources, blueprint)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.ID, "resources", strings.Join(stock, " "))
			pipe.RPush(ctx, furnitureListKey(s.ID), furnitureID)
			return nil
		})
		return err
	}, s.ID)
	if err != nil {
		return nil, err
	}

	// If there is a crash before the furniture record is written, it can be
	// recreated later from the reserved ID.
	return createFurniture(ctx, s.game, furnitureID, blueprint)
}

// Sew sews a new clothing item given by pattern. A needle is required.
func (s *Space) Sew(ctx context.Context, pattern string) error {
	material, ok := ClothingMaterial[pattern]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPattern, pattern)
	}

	return storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		stock, tools, err := readInventory(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		if !contains(tools, ToolNeedle) {
			return fmt.Errorf("%w: %s", ErrMissingTool, ToolNeedle)
		}
		stock, ok := takeItems(stock, material)
		if !ok {
			return fmt.Errorf("%w: sewing %s", ErrInsufficientResources, pattern)
		}
		stock = sortItems(append(stock, pattern))

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.ID, "resources", strings.Join(stock, " "))
			return nil
		})
		return err
	}, s.ID)
}

// Tick simulates the space at time for one tick. If time does not match the
// current simulation time, the tick has already been applied and the call is
// a no-op.
func (s *Space) Tick(ctx context.Context, time int) error {
	var activityID string
	var furnitureIDs []string
	applied := false

	err := storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		applied = false
		values, err := hashFields(ctx, tx, s.ID,
			"time", "meadow_vegetable_growth", "woods_growth", "trail_supply")
		if err != nil {
			return err
		}
		simTime, err := strconv.Atoi(values[0])
		if err != nil {
			return fmt.Errorf("bad space record %s: %w", s.ID, err)
		}
		if time != simTime {
			return nil
		}
		meadow, _ := strconv.Atoi(values[1])
		woods, _ := strconv.Atoi(values[2])
		trail, _ := strconv.Atoi(values[3])

		petValues, err := hashFields(ctx, tx, s.PetID, "nutrition", "dirt", "fur")
		if err != nil {
			return err
		}
		nutrition, _ := strconv.Atoi(petValues[0])
		dirt, _ := strconv.Atoi(petValues[1])
		fur, _ := strconv.Atoi(petValues[2])

		furnitureIDs, err = tx.LRange(ctx, furnitureListKey(s.ID), 0, -1).Result()
		if err != nil {
			return fmt.Errorf("failed to read furniture list: %w", err)
		}

		// Edge-triggered care events: fire only on the exact crossing, never
		// again while the counter stays at its bound.
		petHungry := nutrition == 1
		nutrition = clamp(nutrition-1, 0, NutritionMax)
		petDirty := dirt == DirtMax-1
		dirt = clamp(dirt+1, 0, DirtMax)
		fur = clamp(fur+1, 0, FurMax)

		activityID = s.game.choice(append([]string{"", ActivitySleep, ActivityLeaves}, furnitureIDs...))

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.ID, map[string]string{
				"time":                    strconv.Itoa(simTime + 1),
				"meadow_vegetable_growth": strconv.Itoa(clamp(meadow+1, 0, MeadowVegetableGrowthMax)),
				"woods_growth":            strconv.Itoa(clamp(woods+1, 0, WoodsGrowthMax)),
				"trail_supply":            strconv.Itoa(clamp(trail+1, 0, TrailSupplyMax)),
			})
			pipe.HSet(ctx, s.PetID, map[string]string{
				"nutrition":   strconv.Itoa(nutrition),
				"dirt":        strconv.Itoa(dirt),
				"fur":         strconv.Itoa(fur),
				"activity_id": activityID,
			})
			if petHungry {
				pushEvent(ctx, pipe, Event{Type: EventPetHungry, SpaceID: s.ID})
			}
			if petDirty {
				pushEvent(ctx, pipe, Event{Type: EventPetDirty, SpaceID: s.ID})
			}
			return nil
		})
		if err != nil {
			return err
		}
		applied = true
		return nil
	}, s.ID, s.PetID, furnitureListKey(s.ID))
	if err != nil || !applied {
		return err
	}

	// Side effects on furniture run after the main commit, each in its own
	// small transaction keyed on the furniture item.
	if activityID != "" && !contains([]string{ActivitySleep, ActivityLeaves}, activityID) {
		item, err := s.game.GetFurnitureItem(ctx, activityID)
		if err == nil {
			if err := item.Use(ctx); err != nil {
				return err
			}
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	for _, id := range furnitureIDs {
		item, err := s.game.GetFurnitureItem(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := item.Tick(ctx, time); err != nil {
			return err
		}
	}
	return nil
}

// Hike starts a hike. A compass is required. If the trail supply is full, a
// bonus resource is placed on the trail.
func (s *Space) Hike(ctx context.Context) (*Hike, error) {
	space, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if !contains(space.Tools, ToolCompass) {
		return nil, fmt.Errorf("%w: %s", ErrMissingTool, ToolCompass)
	}
	resource := ""
	if space.TrailSupply >= TrailSupplyMax {
		resource = s.game.choice([]string{ItemVegetable, ItemRock})
	}
	return newHike(space, resource)
}

// recordHike stores the resources gathered on a finished hike. The compass
// must still be owned at commit time. The credit is conditioned on the trail
// supply still being full: a concurrent hike may have spent it first, in
// which case nothing is granted.
func (s *Space) recordHike(ctx context.Context, hike *Hike) error {
	if !hike.Finished() {
		return errors.New("unfinished hike")
	}
	if len(hike.Gathered()) == 0 {
		return nil
	}

	return storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		values, err := hashFields(ctx, tx, s.ID, "resources", "tools", "trail_supply")
		if err != nil {
			return err
		}
		items := strings.Fields(values[0])
		tools := strings.Fields(values[1])
		supply, err := strconv.Atoi(values[2])
		if err != nil {
			return fmt.Errorf("bad space record %s: %w", s.ID, err)
		}
		if !contains(tools, ToolCompass) {
			return fmt.Errorf("%w: %s", ErrMissingTool, ToolCompass)
		}
		if supply < TrailSupplyMax {
			return nil
		}

		items = sortItems(append(items, hike.Gathered()...))
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.ID, map[string]string{
				"resources":    strings.Join(items, " "),
				"trail_supply": "0",
			})
			return nil
		})
		return err
	}, s.ID)
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// hashFields reads the given hash fields, raising ErrNotFound if the record
// is missing entirely.
func hashFields(ctx context.Context, tx *redis.Tx, key string, fields ...string) ([]string, error) {
	raw, err := tx.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	values := make([]string, len(raw))
	missing := true
	for i, value := range raw {
		if s, ok := value.(string); ok {
			values[i] = s
			missing = false
		}
	}
	if missing {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return values, nil
}

func readInventory(ctx context.Context, tx *redis.Tx, spaceID string) (items, tools []string, err error) {
	values, err := hashFields(ctx, tx, spaceID, "resources", "tools")
	if err != nil {
		return nil, nil, err
	}
	return strings.Fields(values[0]), strings.Fields(values[1]), nil
}

func checkBlueprint(ctx context.Context, tx *redis.Tx, spaceID, blueprint string) error {
	_, err := tx.ZScore(ctx, blueprintsKey(spaceID), blueprint).Result()
	if err == redis.Nil {
		return fmt.Errorf("%w: %s", ErrUnknownBlueprint, blueprint)
	}
	if err != nil {
		return fmt.Errorf("failed to read blueprints: %w", err)
	}
	return nil
}

func pushEvent(ctx context.Context, pipe redis.Pipeliner, event Event) {
	// Encoding a two-field struct cannot fail.
	data, _ := event.Encode()
	pipe.RPush(ctx, EventsKey, data)
}
