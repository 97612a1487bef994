package world

import (
	"encoding/json"
	"fmt"
)

// EventsKey is the global durable FIFO the simulation pushes events onto.
const EventsKey = "events"

// Event types emitted by the simulation.
const (
	EventPetHungry     = "pet-hungry"
	EventPetDirty      = "pet-dirty"
	EventExplainTouch  = "space-explain-touch"
	EventExplainGather = "space-explain-gather"
	EventExplainFeed   = "space-explain-feed"
	EventExplainCraft  = "space-explain-craft"
	EventExplainBasics = "space-explain-basics"
	EventVisitGhost    = "space-visit-ghost"
)

// Event is a durable notification describing something that happened in a
// space, destined for chat delivery. It carries enough identifying data to
// re-fetch current state for rendering.
type Event struct {
	Type    string `json:"type"`
	SpaceID string `json:"space_id"`
}

// Encode returns the queue representation of the event.
func (e Event) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to encode event: %w", err)
	}
	return string(data), nil
}

// DecodeEvent parses the queue representation data into an event.
func DecodeEvent(data string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return e, nil
}
