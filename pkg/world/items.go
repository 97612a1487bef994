package world

import "sort"

// Item symbols referenced by game logic.
const (
	ItemVegetable = "🥕"
	ItemRock      = "🪨"
	ItemWood      = "🪵"
	ItemWool      = "🧶"

	ToolAxe      = "🪓"
	ToolScissors = "✂️"
	ToolNeedle   = "🪡"
	ToolCompass  = "🧭"
)

// ItemCategories holds the available item types by category. The category
// order and the declaration order inside each category define the canonical
// display order of inventories.
var ItemCategories = map[string][]string{
	"food":     {"🥕", "🍲"},
	"resource": {"🪨", "🪵", "🧶"},
	"clothing": {"🧢", "👒", "🎧", "👓", "🕶️", "🥽", "🧣", "🎀", "💍"},
	"tool":     {"👋", "✏️", "🧺", "🪓", "✂️", "🔨", "🪡", "🍳", "🧽", "🚿", "🧭"},
}

var itemCategoryOrder = []string{"food", "resource", "clothing", "tool"}

// ItemWeights maps each item to the weight by which inventories are ordered.
var ItemWeights = func() map[string]int {
	weights := map[string]int{}
	for _, category := range itemCategoryOrder {
		for _, item := range ItemCategories[category] {
			weights[item] = len(weights)
		}
	}
	return weights
}()

// Material distribution guidelines: 4 - 5 resources for small (S) objects,
// 6 - 7 for M and 8 - 9 for L.

// ToolMaterial holds the material needed for each tool.
var ToolMaterial = map[string][]string{
	"🪓": {"🪨"},                          // S
	"✂️": {"🪨", "🪨", "🪨", "🪵"},       // S
	"🪡": {"🪵", "🪵", "🪵", "🪵", "🪵"}, // S
	"🍳": {"🪨", "🪨", "🪨", "🪨", "🪵"}, // S
	"🚿": {"🪨", "🪨", "🪵", "🪵", "🪵", "🪵"}, // M
	"🧭": {"🪨", "🪨", "🪨", "🪨"},             // S
}

var toolOrder = []string{"🪓", "✂️", "🪡", "🍳", "🚿", "🧭"}

// FurnitureMaterial holds the material needed for each furniture item.
var FurnitureMaterial = map[string][]string{
	// Toys
	"🪃": {"🪵", "🪵"},                         // S
	"⚾": {"🪵", "🪵", "🧶", "🧶", "🧶"},       // S
	"🧸": {"🪨", "🧶", "🧶", "🧶", "🧶"},       // S
	// Furniture
	"🛋️": {"🪨", "🪵", "🪵", "🪵", "🪵", "🧶", "🧶", "🧶", "🧶"}, // L
	"🪴": {"🪨", "🪨", "🪵", "🪵", "🪵", "🪵", "🪵"},             // M
	"⛲": {"🪨", "🪨", "🪨", "🪨", "🪨", "🪨", "🪨", "🪨"},       // L
	// Devices
	"📺": {"🪨", "🪨", "🪵", "🪵", "🪵", "🪵"}, // M
	// Miscellaneous
	"🗞️": {"🪵", "🪵", "🪵", "🧶"},                         // S
	"🎨": {"🪵", "🪵", "🪵", "🪵", "🪨", "🧶", "🧶"},       // M
}

var furnitureOrder = []string{"🪃", "⚾", "🧸", "🛋️", "🪴", "⛲", "📺", "🗞️", "🎨"}

// ClothingMaterial holds the material needed for each clothing pattern.
var ClothingMaterial = map[string][]string{
	// Head
	"🧢": {"🪵", "🧶", "🧶", "🧶"},             // S
	"👒": {"🪵", "🪵", "🪵", "🪵", "🧶"},       // S
	"🎧": {"🪨", "🪨", "🧶", "🧶", "🧶"},       // S
	// Face
	"👓": {"🪨", "🪨", "🪵", "🪵", "🧶"},       // S
	"🕶️": {"🪨", "🪨", "🪵", "🪵", "🧶"},      // S
	"🥽": {"🪨", "🪨", "🧶", "🧶", "🧶"},       // S
	// Body
	"🧣": {"🧶", "🧶", "🧶", "🧶", "🧶", "🧶"}, // M
	"🎀": {"🧶", "🧶", "🧶", "🧶"},             // S
	"💍": {"🪨", "🪨", "🪨", "🪨", "🧶"},       // S
}

// BlueprintWeights maps each blueprint to the weight by which learned
// blueprints are ordered.
var BlueprintWeights = func() map[string]float64 {
	weights := map[string]float64{}
	for _, blueprint := range toolOrder {
		weights[blueprint] = float64(len(weights))
	}
	for _, blueprint := range furnitureOrder {
		weights[blueprint] = float64(len(weights))
	}
	return weights
}()

// knownItem reports whether item is part of the item taxonomy.
func knownItem(item string) bool {
	_, ok := ItemWeights[item]
	return ok
}

func inCategory(category, item string) bool {
	for _, known := range ItemCategories[category] {
		if known == item {
			return true
		}
	}
	return false
}

// sortItems orders items in place by their display weight. The sort is
// stable so equal items keep their insertion order.
func sortItems(items []string) []string {
	sort.SliceStable(items, func(i, j int) bool {
		return ItemWeights[items[i]] < ItemWeights[items[j]]
	})
	return items
}

// takeItems removes each wanted item from stock one-for-one. If any wanted
// item is missing, ok is false and stock is returned unchanged: the debit is
// all or nothing.
func takeItems(stock, wanted []string) (rest []string, ok bool) {
	rest = append([]string{}, stock...)
	for _, item := range wanted {
		found := false
		for i, held := range rest {
			if held == item {
				rest = append(rest[:i], rest[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return stock, false
		}
	}
	return rest, true
}

func contains(items []string, item string) bool {
	for _, held := range items {
		if held == item {
			return true
		}
	}
	return false
}
