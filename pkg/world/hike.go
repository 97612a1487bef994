package world

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// HikeRadius is the radius of the hike map and, at the same time, the exact
// number of steps per move.
const HikeRadius = 4

// Hike trail tiles.
const (
	TileGrass       = "🟩"
	TileOrigin      = "✴️"
	TileDestination = "📍"
	TileHidden      = "⬜"
)

// Step is a single step of a move: the direction walked and the tile
// encountered there.
type Step struct {
	Direction string
	Tile      string
}

var hikeDisplacements = map[string][2]int{
	"➡️": {1, 0},
	"⬇️": {0, 1},
	"⬅️": {-1, 0},
	"⬆️": {0, -1},
}

var hikeDirections = func() map[[2]int]string {
	directions := map[[2]int]string{}
	for direction, displacement := range hikeDisplacements {
		directions[displacement] = direction
	}
	return directions
}()

// Hike is a single hike minigame session. It lives in memory only; the sole
// persistent effect is the resource credit recorded when the destination is
// reached.
type Hike struct {
	space    *Space
	tiles    [][]string
	moves    [][]Step
	resource string
	gathered []string
	revealed map[[2]int]bool
}

// newHike generates a fresh trail. resource, if not empty, is placed on a
// random passable tile.
func newHike(space *Space, resource string) (*Hike, error) {
	if resource != "" && resource != ItemVegetable && !inCategory("resource", resource) {
		return nil, fmt.Errorf("%w: hike resource %s", ErrUnknownItem, resource)
	}

	size := HikeRadius*2 + 1
	tiles := make([][]string, size)
	for y := range tiles {
		tiles[y] = make([]string, size)
	}
	h := &Hike{
		space:    space,
		tiles:    tiles,
		resource: resource,
		revealed: map[[2]int]bool{},
	}
	h.generate()
	return h, nil
}

// Finished indicates if the player found the destination.
func (h *Hike) Finished() bool {
	if len(h.moves) == 0 {
		return false
	}
	lastMove := h.moves[len(h.moves)-1]
	return lastMove[len(lastMove)-1].Tile == TileDestination
}

// Gathered returns the resources the player has gathered so far.
func (h *Hike) Gathered() []string {
	return h.gathered
}

// Moves returns the moves the player made so far.
func (h *Hike) Moves() [][]Step {
	return h.moves
}

// Move walks HikeRadius steps in the given directions and returns a
// description of the move. Walking into a tree ends the move early. If the
// destination is reached, the hike is recorded.
func (h *Hike) Move(ctx context.Context, directions []string) ([]Step, error) {
	if len(directions) != HikeRadius {
		return nil, fmt.Errorf("%w: %d steps", ErrBadMoveLength, len(directions))
	}
	for _, direction := range directions {
		if _, ok := hikeDisplacements[direction]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadDirection, direction)
		}
	}
	if h.Finished() {
		return nil, ErrHikeFinished
	}

	var move []Step
	x, y := HikeRadius, HikeRadius
	for _, direction := range directions {
		displacement := hikeDisplacements[direction]
		x, y = x+displacement[0], y+displacement[1]
		tile := h.tiles[y][x]
		move = append(move, Step{Direction: direction, Tile: tile})
		h.revealed[[2]int{x, y}] = true

		if isTree(tile) || tile == TileDestination {
			break
		}
		if tile == h.resource && tile != "" {
			h.gathered = append(h.gathered, tile)
			h.tiles[y][x] = TileGrass
		}
	}
	h.moves = append(h.moves, move)

	if h.Finished() {
		if err := h.space.recordHike(ctx, h); err != nil {
			return nil, err
		}
	}
	return move, nil
}

// FindPath finds directions from the origin to the given tile. If the tile
// is not reachable within a single move, ErrUnreachable is raised.
func (h *Hike) FindPath(tile string) ([]string, error) {
	queue := [][][2]int{{{HikeRadius, HikeRadius}}}
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		x, y := path[len(path)-1][0], path[len(path)-1][1]
		distance := len(path) - 1

		if distance > HikeRadius {
			continue
		}
		if countCoords(path, x, y) > 1 {
			continue
		}
		if h.tiles[y][x] == tile {
			directions := make([]string, 0, len(path)-1)
			for i := 1; i < len(path); i++ {
				displacement := [2]int{path[i][0] - path[i-1][0], path[i][1] - path[i-1][1]}
				directions = append(directions, hikeDirections[displacement])
			}
			return directions, nil
		}

		for _, coords := range h.adjacents(x, y) {
			next := make([][2]int, len(path), len(path)+1)
			copy(next, path)
			queue = append(queue, append(next, coords))
		}
	}
	return nil, fmt.Errorf("%w: tile %s", ErrUnreachable, tile)
}

// Text returns a text representation of the map. Tiles not visited by the
// player so far are hidden, unless revealed is set.
func (h *Hike) Text(revealed bool) string {
	rows := make([]string, len(h.tiles))
	for y, row := range h.tiles {
		var builder strings.Builder
		for x, tile := range row {
			if tile != "" && (revealed || h.revealed[[2]int{x, y}]) {
				builder.WriteString(tile)
			} else {
				builder.WriteString(TileHidden)
			}
		}
		rows[y] = builder.String()
	}
	return strings.Join(rows, "\n")
}

func (h *Hike) String() string {
	return h.Text(false)
}

func isTree(tile string) bool {
	return tile == "🌲" || tile == "🌳"
}

func countCoords(path [][2]int, x, y int) int {
	count := 0
	for _, coords := range path {
		if coords[0] == x && coords[1] == y {
			count++
		}
	}
	return count
}

// adjacents returns the walkable neighbour coordinates. Trees block
// movement. Coordinates may lie outside the map; callers prune them with the
// distance bound before access.
func (h *Hike) adjacents(x, y int) [][2]int {
	if isTree(h.tiles[y][x]) {
		return nil
	}
	return [][2]int{{x + 1, y}, {x, y + 1}, {x - 1, y}, {x, y - 1}}
}

// generate builds the tile map: a randomized passable network covering about
// two thirds of the trail area, the rest filled with trees.
func (h *Hike) generate() {
	// In taxicab geometry, a disc covers half the area of its bounding
	// square.
	area := len(h.tiles) * len(h.tiles) / 2
	distances := h.generatePassable(int(float64(area)*2.0/3.0 + 0.5))

	type passableTile struct {
		coords   [2]int
		distance int
	}
	passable := make([]passableTile, 0, len(distances))
	for coords, distance := range distances {
		passable = append(passable, passableTile{coords, distance})
	}
	// Deterministic base order before the shuffle; map iteration is not.
	sort.Slice(passable, func(i, j int) bool {
		if passable[i].coords[1] != passable[j].coords[1] {
			return passable[i].coords[1] < passable[j].coords[1]
		}
		return passable[i].coords[0] < passable[j].coords[0]
	})
	for i := len(passable) - 1; i > 0; i-- {
		j := h.space.game.intn(i + 1)
		passable[i], passable[j] = passable[j], passable[i]
	}
	sort.SliceStable(passable, func(i, j int) bool {
		return passable[i].distance < passable[j].distance
	})

	// Trees fill the trail disc.
	for y, row := range h.tiles {
		for x := range row {
			if abs(HikeRadius-x)+abs(HikeRadius-y) <= HikeRadius {
				if h.space.game.float() < 0.25 {
					h.tiles[y][x] = "🌳"
				} else {
					h.tiles[y][x] = "🌲"
				}
			}
		}
	}

	// Ground.
	for _, tile := range passable {
		h.tiles[tile.coords[1]][tile.coords[0]] = TileGrass
	}

	// Origin is the passable tile nearest to the center, destination the
	// farthest.
	origin := passable[0]
	passable = passable[1:]
	h.tiles[origin.coords[1]][origin.coords[0]] = TileOrigin
	h.revealed[origin.coords] = true

	destination := passable[len(passable)-1]
	passable = passable[:len(passable)-1]
	h.tiles[destination.coords[1]][destination.coords[0]] = TileDestination
	h.revealed[destination.coords] = true

	if h.resource != "" {
		coords := passable[h.space.game.intn(len(passable))].coords
		h.tiles[coords[1]][coords[0]] = h.resource
	}
}

// generatePassable explores random paths from the center and returns the
// minimal path distance for each passable tile. A tile never borders more
// than one other tile of the path it was reached by, which keeps the network
// maze-like.
func (h *Hike) generatePassable(count int) map[[2]int]int {
	distances := map[[2]int]int{}
	bucket := [][][2]int{{{HikeRadius, HikeRadius}}}
	for len(bucket) > 0 {
		path := bucket[len(bucket)-1]
		bucket = bucket[:len(bucket)-1]
		x, y := path[len(path)-1][0], path[len(path)-1][1]
		distance := len(path) - 1

		if distance > HikeRadius {
			continue
		}
		if countCoords(path, x, y) > 1 {
			continue
		}
		neighbours := 0
		for _, coords := range h.adjacents(x, y) {
			if countCoords(path, coords[0], coords[1]) > 0 {
				neighbours++
			}
		}
		if neighbours > 1 {
			continue
		}
		if known, ok := distances[[2]int{x, y}]; ok {
			if distance < known {
				distances[[2]int{x, y}] = distance
			}
		} else {
			if len(distances) >= count {
				continue
			}
			distances[[2]int{x, y}] = distance
		}

		for _, coords := range h.adjacents(x, y) {
			// A flat random bucket is slightly biased towards already
			// visited paths, which is fine for trail variety.
			next := make([][2]int, len(path), len(path)+1)
			copy(next, path)
			i := h.space.game.intn(len(bucket) + 1)
			bucket = append(bucket, nil)
			copy(bucket[i+1:], bucket[i:])
			bucket[i] = append(next, coords)
		}
	}
	return distances
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
