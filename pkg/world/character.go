package world

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/pocketpet/pocketpet/internal/storage"
)

func dialogueKey(characterID string) string { return characterID + ".dialogue" }

// Message is a single dialogue line. ID is a semantic tag, not unique per
// instance. Request lists items the character currently wants, if any.
// Taken lists items the player has just given to the character; it is only
// set on the message handed back right after a fulfilled request.
type Message struct {
	ID      string
	Request []string
	Taken   []string
}

// parseMessage parses the string representation data into a message.
func parseMessage(data string) Message {
	tokens := strings.Fields(data)
	if len(tokens) == 0 {
		return Message{}
	}
	message := Message{ID: tokens[0]}
	if len(tokens) > 1 {
		message.Request = tokens[1:]
	}
	return message
}

// encode returns the string representation of the message.
func (m Message) encode() string {
	return strings.Join(append([]string{m.ID}, m.Request...), " ")
}

// Character is a non-player character present in a space. It owns a
// scripted dialogue queue, consumed front to back.
type Character struct {
	ID      string
	SpaceID string
	Avatar  string

	game *Game
}

func parseCharacter(data map[string]string, g *Game) *Character {
	return &Character{
		ID:      data["id"],
		SpaceID: data["space_id"],
		Avatar:  data["avatar"],
		game:    g,
	}
}

// GetDialogue returns the remaining dialogue, starting from the most recent
// message.
func (c *Character) GetDialogue(ctx context.Context) ([]Message, error) {
	lines, err := c.game.rdb.LRange(ctx, dialogueKey(c.ID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dialogue: %w", err)
	}
	messages := make([]Message, len(lines))
	for i, line := range lines {
		messages[i] = parseMessage(line)
	}
	return messages, nil
}

// Talk talks to the character and returns their reply.
//
// If the character has requested some items, the items are taken from the
// inventory, or the request message is repeated until the player can
// afford them. The final dialogue message is always repeated.
func (c *Character) Talk(ctx context.Context) (Message, error) {
	var reply Message
	err := storage.Atomic(ctx, c.game.rdb, func(tx *redis.Tx) error {
		lines, err := tx.LRange(ctx, dialogueKey(c.ID), 0, 1).Result()
		if err != nil {
			return fmt.Errorf("failed to read dialogue: %w", err)
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: dialogue of %s", ErrNotFound, c.ID)
		}
		message := parseMessage(lines[0])
		if len(lines) < 2 {
			// Terminal message, never dequeued.
			reply = message
			return nil
		}
		next := parseMessage(lines[1])

		values, err := hashFields(ctx, tx, c.SpaceID, "resources")
		if err != nil {
			return err
		}
		items := strings.Fields(values[0])

		if len(message.Request) > 0 {
			rest, ok := takeItems(items, message.Request)
			if !ok {
				reply = message
				return nil
			}
			items = rest
			next.Taken = message.Request
		}

		reply = next
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LTrim(ctx, dialogueKey(c.ID), 1, -1)
			pipe.HSet(ctx, c.SpaceID, "resources", strings.Join(items, " "))
			return nil
		})
		return err
	}, dialogueKey(c.ID), c.SpaceID)
	return reply, err
}
