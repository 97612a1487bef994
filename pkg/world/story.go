package world

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/pocketpet/pocketpet/internal/storage"
)

// Story is a linear, predicate-gated narrative state machine. Tell
// evaluates the current chapter's exit condition against fresh world state
// and advances to the next chapter if it holds; otherwise it is a no-op.
// Reaching the terminal chapter removes the story from the space's active
// set.
type Story interface {
	ID() string
	SpaceID() string
	Chapter() string
	Tell(ctx context.Context) error
}

// storyTypes maps the ID prefix of a stored story to its constructor. The
// table is static; no runtime introspection.
var storyTypes = map[string]func(base storyBase) Story{
	"IntroStory":  func(base storyBase) Story { return &IntroStory{base} },
	"SewingStory": func(base storyBase) Story { return &SewingStory{base} },
}

type storyBase struct {
	id         string
	spaceID    string
	chapter    string
	updateTime int

	game *Game
}

func (s *storyBase) ID() string      { return s.id }
func (s *storyBase) SpaceID() string { return s.spaceID }
func (s *storyBase) Chapter() string { return s.chapter }

func parseStory(data map[string]string, g *Game) (Story, error) {
	updateTime, _ := strconv.Atoi(data["update_time"])
	base := storyBase{
		id:         data["id"],
		spaceID:    data["space_id"],
		chapter:    data["chapter"],
		updateTime: updateTime,
		game:       g,
	}
	kind, _, _ := strings.Cut(base.id, ":")
	construct, ok := storyTypes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: story type %s", ErrNotFound, kind)
	}
	return construct(base), nil
}

// advance writes the next chapter along with the current simulation tick and
// optionally enqueues an explanatory event.
func (s *storyBase) advance(ctx context.Context, pipe redis.Pipeliner, chapter string, time int, eventType string) {
	pipe.HSet(ctx, s.id, map[string]string{
		"chapter":     chapter,
		"update_time": strconv.Itoa(time),
	})
	if eventType != "" {
		pushEvent(ctx, pipe, Event{Type: eventType, SpaceID: s.spaceID})
	}
}

// finish removes the story from the space's active set.
func (s *storyBase) finish(ctx context.Context, pipe redis.Pipeliner, eventType string) {
	pipe.SRem(ctx, storiesKey(s.spaceID), s.id)
	if eventType != "" {
		pushEvent(ctx, pipe, Event{Type: eventType, SpaceID: s.spaceID})
	}
}

// IntroStory is the tutorial: it walks the player through touching,
// gathering, feeding and crafting.
type IntroStory struct {
	storyBase
}

func (s *IntroStory) Tell(ctx context.Context) error {
	return storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		values, err := hashFields(ctx, tx, s.id, "chapter")
		if err != nil {
			return err
		}
		chapter := values[0]
		spaceValues, err := hashFields(ctx, tx, s.spaceID, "time", "resources", "tools", "pet_id")
		if err != nil {
			return err
		}
		time, _ := strconv.Atoi(spaceValues[0])
		items := strings.Fields(spaceValues[1])
		tools := strings.Fields(spaceValues[2])
		petID := spaceValues[3]
		petValues, err := hashFields(ctx, tx, petID, "hatched", "nutrition")
		if err != nil {
			return err
		}
		hatched := petValues[0] != ""
		nutrition, _ := strconv.Atoi(petValues[1])

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			switch {
			case chapter == "start":
				s.advance(ctx, pipe, "touch", time, EventExplainTouch)
			case chapter == "touch" && hatched:
				s.advance(ctx, pipe, "gather", time, EventExplainGather)
			case chapter == "gather" && contains(items, ItemVegetable):
				s.advance(ctx, pipe, "feed", time, EventExplainFeed)
			case chapter == "feed" && nutrition >= NutritionMax:
				s.advance(ctx, pipe, "craft", time, EventExplainCraft)
			case chapter == "craft" && contains(tools, ToolAxe):
				s.finish(ctx, pipe, EventExplainBasics)
			}
			return nil
		})
		return err
	}, s.id, s.spaceID)
}

// SewingStory brings the ghost to visit: once the player owns scissors, the
// ghost appears after a while, asks for wool and teaches the needle
// blueprint before saying goodbye.
type SewingStory struct {
	storyBase
}

func (s *SewingStory) Tell(ctx context.Context) error {
	return storage.Atomic(ctx, s.game.rdb, func(tx *redis.Tx) error {
		values, err := hashFields(ctx, tx, s.id, "chapter", "update_time")
		if err != nil {
			return err
		}
		chapter := values[0]
		updateTime, _ := strconv.Atoi(values[1])
		spaceValues, err := hashFields(ctx, tx, s.spaceID, "time", "tools")
		if err != nil {
			return err
		}
		time, _ := strconv.Atoi(spaceValues[0])
		tools := strings.Fields(spaceValues[1])

		ghostID, front, err := s.findGhost(ctx, tx)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			switch {
			case chapter == "scissors" && contains(tools, ToolScissors):
				s.advance(ctx, pipe, "visit", time, "")
			case chapter == "visit" && time >= updateTime+2:
				s.spawnGhost(ctx, pipe)
				s.advance(ctx, pipe, "quest", time, EventVisitGhost)
			case chapter == "quest" &&
				(front.ID == "ghost-sewing-blueprint" || front.ID == "ghost-sewing-goodbye"):
				pipe.ZAdd(ctx, blueprintsKey(s.spaceID),
					redis.Z{Score: BlueprintWeights[ToolNeedle], Member: ToolNeedle})
				s.advance(ctx, pipe, "leave", time, "")
			case chapter == "leave" && front.ID == "ghost-sewing-goodbye":
				pipe.Del(ctx, ghostID, dialogueKey(ghostID))
				pipe.LRem(ctx, charactersKey(s.spaceID), 1, ghostID)
				s.finish(ctx, pipe, "")
			}
			return nil
		})
		return err
	}, s.id, s.spaceID)
}

// findGhost locates the visiting ghost, if present, and the front of its
// dialogue queue.
func (s *SewingStory) findGhost(ctx context.Context, tx *redis.Tx) (string, Message, error) {
	ids, err := tx.LRange(ctx, charactersKey(s.spaceID), 0, -1).Result()
	if err != nil {
		return "", Message{}, fmt.Errorf("failed to read character list: %w", err)
	}
	for _, id := range ids {
		avatar, err := tx.HGet(ctx, id, "avatar").Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return "", Message{}, fmt.Errorf("failed to load character: %w", err)
		}
		if avatar != "👻" {
			continue
		}
		lines, err := tx.LRange(ctx, dialogueKey(id), 0, 0).Result()
		if err != nil {
			return "", Message{}, fmt.Errorf("failed to read dialogue: %w", err)
		}
		front := Message{}
		if len(lines) > 0 {
			front = parseMessage(lines[0])
		}
		return id, front, nil
	}
	return "", Message{}, nil
}

func (s *SewingStory) spawnGhost(ctx context.Context, pipe redis.Pipeliner) {
	ghostID := newID("Character")
	pipe.HSet(ctx, ghostID, map[string]string{
		"id":       ghostID,
		"space_id": s.spaceID,
		"avatar":   "👻",
	})
	dialogue := []Message{
		{ID: "initial"},
		{ID: "ghost-sewing-hello"},
		{ID: "ghost-sewing-daughter"},
		{ID: "ghost-sewing-request", Request: []string{"🧶", "🧶", "🧶"}},
		{ID: "ghost-sewing-blueprint"},
		{ID: "ghost-sewing-goodbye"},
	}
	lines := make([]interface{}, len(dialogue))
	for i, message := range dialogue {
		lines[i] = message.encode()
	}
	pipe.RPush(ctx, dialogueKey(ghostID), lines...)
	pipe.RPush(ctx, charactersKey(s.spaceID), ghostID)
}
