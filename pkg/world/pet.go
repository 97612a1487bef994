package world

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/pocketpet/pocketpet/internal/storage"
)

// Pet counter bounds.
const (
	// NutritionMax is the level at which the pet is full.
	NutritionMax = 24 + 1
	// DirtMax is the level at which the pet is completely dirty.
	DirtMax = 48 + 1
	// FurMax is the level at which the fur is fully grown.
	FurMax = 8 - 1
)

// Pet is the creature residing in a space.
type Pet struct {
	ID         string
	SpaceID    string
	Name       string
	Hatched    bool
	Nutrition  int
	Dirt       int
	Fur        int
	Clothing   string
	ActivityID string

	game *Game
}

func parsePet(data map[string]string, g *Game) *Pet {
	nutrition, _ := strconv.Atoi(data["nutrition"])
	dirt, _ := strconv.Atoi(data["dirt"])
	fur, _ := strconv.Atoi(data["fur"])
	return &Pet{
		ID:         data["id"],
		SpaceID:    data["space_id"],
		Name:       data["name"],
		Hatched:    data["hatched"] != "",
		Nutrition:  nutrition,
		Dirt:       dirt,
		Fur:        fur,
		Clothing:   data["clothing"],
		ActivityID: data["activity_id"],
		game:       g,
	}
}

// GetSpace returns the space the pet inhabits.
func (p *Pet) GetSpace(ctx context.Context) (*Space, error) {
	return p.game.GetSpace(ctx, p.SpaceID)
}

// GetActivity returns the current standalone activity symbol, or the
// furniture item the pet is engaged with.
func (p *Pet) GetActivity(ctx context.Context) (Furniture, string, error) {
	if strings.HasPrefix(p.ActivityID, "Furniture:") {
		item, err := p.game.GetFurnitureItem(ctx, p.ActivityID)
		if err != nil {
			return nil, "", err
		}
		return item, "", nil
	}
	return nil, p.ActivityID, nil
}

// Touch touches the pet. If the pet is still an egg, it hatches.
func (p *Pet) Touch(ctx context.Context) error {
	if err := p.game.rdb.HSet(ctx, p.ID, "hatched", "true").Err(); err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	return nil
}

// Feed feeds a vegetable to the pet, resetting its nutrition to the
// maximum.
func (p *Pet) Feed(ctx context.Context, food string) error {
	if !inCategory("food", food) {
		return fmt.Errorf("%w: %s", ErrUnknownItem, food)
	}

	return storage.Atomic(ctx, p.game.rdb, func(tx *redis.Tx) error {
		values, err := hashFields(ctx, tx, p.SpaceID, "resources")
		if err != nil {
			return err
		}
		items := strings.Fields(values[0])
		petValues, err := hashFields(ctx, tx, p.ID, "nutrition")
		if err != nil {
			return err
		}
		nutrition, err := strconv.Atoi(petValues[0])
		if err != nil {
			return fmt.Errorf("bad pet record %s: %w", p.ID, err)
		}
		if nutrition >= NutritionMax {
			return ErrPetFull
		}
		items, ok := takeItems(items, []string{food})
		if !ok {
			return fmt.Errorf("%w: %s", ErrInsufficientResources, food)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, p.SpaceID, "resources", strings.Join(items, " "))
			pipe.HSet(ctx, p.ID, "nutrition", strconv.Itoa(NutritionMax))
			return nil
		})
		return err
	}, p.SpaceID, p.ID)
}

// Wash washes the pet.
func (p *Pet) Wash(ctx context.Context) error {
	return storage.Atomic(ctx, p.game.rdb, func(tx *redis.Tx) error {
		values, err := hashFields(ctx, tx, p.ID, "dirt")
		if err != nil {
			return err
		}
		dirt, err := strconv.Atoi(values[0])
		if err != nil {
			return fmt.Errorf("bad pet record %s: %w", p.ID, err)
		}
		if dirt == 0 {
			return ErrPetClean
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, p.ID, "dirt", "0")
			return nil
		})
		return err
	}, p.ID)
}

// Dress dresses the pet in the given clothing. An empty clothing undresses
// the pet; a worn item goes back into the inventory.
func (p *Pet) Dress(ctx context.Context, clothing string) error {
	if clothing != "" && !inCategory("clothing", clothing) {
		return fmt.Errorf("%w: %s", ErrUnknownItem, clothing)
	}

	return storage.Atomic(ctx, p.game.rdb, func(tx *redis.Tx) error {
		petValues, err := hashFields(ctx, tx, p.ID, "clothing")
		if err != nil {
			return err
		}
		worn := petValues[0]
		values, err := hashFields(ctx, tx, p.SpaceID, "resources")
		if err != nil {
			return err
		}
		items := strings.Fields(values[0])

		if worn != "" {
			items = sortItems(append(items, worn))
		}
		if clothing != "" {
			var ok bool
			items, ok = takeItems(items, []string{clothing})
			if !ok {
				return fmt.Errorf("%w: %s", ErrInsufficientResources, clothing)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, p.ID, "clothing", clothing)
			pipe.HSet(ctx, p.SpaceID, "resources", strings.Join(items, " "))
			return nil
		})
		return err
	}, p.ID, p.SpaceID)
}

// Shear shears available wool from the pet and returns a receipt. Scissors
// are required. If the fur is not fully grown yet, the receipt is empty.
func (p *Pet) Shear(ctx context.Context) ([]string, error) {
	var wool []string
	err := storage.Atomic(ctx, p.game.rdb, func(tx *redis.Tx) error {
		wool = nil
		values, err := hashFields(ctx, tx, p.SpaceID, "resources", "tools")
		if err != nil {
			return err
		}
		items := strings.Fields(values[0])
		tools := strings.Fields(values[1])
		petValues, err := hashFields(ctx, tx, p.ID, "fur")
		if err != nil {
			return err
		}
		fur, err := strconv.Atoi(petValues[0])
		if err != nil {
			return fmt.Errorf("bad pet record %s: %w", p.ID, err)
		}
		if !contains(tools, ToolScissors) {
			return fmt.Errorf("%w: %s", ErrMissingTool, ToolScissors)
		}
		if fur < FurMax {
			return nil
		}

		wool = []string{ItemWool}
		items = sortItems(append(items, wool...))
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, p.SpaceID, "resources", strings.Join(items, " "))
			pipe.HSet(ctx, p.ID, "fur", "0")
			return nil
		})
		return err
	}, p.SpaceID, p.ID)
	return wool, err
}

// ChangeName renames the pet.
func (p *Pet) ChangeName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	if err := p.game.rdb.HSet(ctx, p.ID, "name", name).Err(); err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	return nil
}

func (p *Pet) String() string {
	return "🐕" + p.Clothing
}
