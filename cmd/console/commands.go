package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pocketpet/pocketpet/pkg/world"
)

// performer translates tokenized console input into world operations and
// renders the outcome as chat text. A started hike stays active until it is
// finished or another command interrupts it.
type performer struct {
	game *world.Game
	chat string
	hike *world.Hike
}

func newPerformer(game *world.Game, chat string) *performer {
	return &performer{game: game, chat: chat}
}

var moveDirections = map[string]bool{"➡️": true, "⬇️": true, "⬅️": true, "⬆️": true}

func (p *performer) perform(ctx context.Context, input string) string {
	space, err := p.game.GetSpaceByChat(ctx, p.chat)
	if err != nil {
		return renderError(err)
	}

	tokens := world.Tokenize(input)
	if len(tokens) == 0 {
		return p.overview(ctx, space)
	}

	if p.hike != nil && moveDirections[tokens[0]] {
		return p.move(ctx, tokens)
	}
	p.hike = nil

	switch tokens[0] {
	case "👋":
		return p.touch(ctx, space)
	case "🧺":
		receipt, err := space.Gather(ctx)
		if err != nil {
			return renderError(err)
		}
		return renderReceipt(receipt, "You gathered %s from the meadow. 😊",
			"The meadow is bare. Maybe have a look again later?")
	case "🪓":
		receipt, err := space.ChopWood(ctx)
		if err != nil {
			return renderError(err)
		}
		return renderReceipt(receipt, "You chopped %s in the woods. 😊",
			"There are no more logs in the woods. Maybe have a look again later?")
	case "🔨":
		if len(tokens) < 2 {
			return "🔨 What do you want to craft?"
		}
		return p.craft(ctx, space, tokens[1])
	case "🪡":
		if len(tokens) < 2 {
			return "🪡 What do you want to sew?"
		}
		if err := space.Sew(ctx, tokens[1]); err != nil {
			return renderError(err)
		}
		return fmt.Sprintf("You sewed a %s. 😊", tokens[1])
	case "🧽":
		return p.wash(ctx, space)
	case "✂️":
		return p.shear(ctx, space)
	case "🧭":
		return p.startHike(ctx, space)
	case "👻":
		return p.talk(ctx, space)
	case "name":
		return p.rename(ctx, space, strings.Join(tokens[1:], " "))
	case "obtain":
		if err := space.Obtain(ctx, tokens[1:]...); err != nil {
			return renderError(err)
		}
		return "Obtained. 😉"
	}

	if contains(world.ItemCategories["food"], tokens[0]) {
		return p.feed(ctx, space, tokens[0])
	}
	if contains(world.ItemCategories["clothing"], tokens[0]) {
		return p.dress(ctx, space, tokens[0])
	}
	return p.overview(ctx, space)
}

func (p *performer) touch(ctx context.Context, space *world.Space) string {
	pet, err := space.GetPet(ctx)
	if err != nil {
		return renderError(err)
	}
	if err := pet.Touch(ctx); err != nil {
		return renderError(err)
	}
	if !pet.Hatched {
		return fmt.Sprintf("🥚 The egg wriggles… %s hatched! 🎉", pet.Name)
	}
	return fmt.Sprintf("%s %s seems to like that. 😊", pet, pet.Name)
}

func (p *performer) feed(ctx context.Context, space *world.Space, food string) string {
	pet, err := space.GetPet(ctx)
	if err != nil {
		return renderError(err)
	}
	if err := pet.Feed(ctx, food); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("%s %s enjoys the %s. 😊", pet, pet.Name, food)
}

func (p *performer) wash(ctx context.Context, space *world.Space) string {
	pet, err := space.GetPet(ctx)
	if err != nil {
		return renderError(err)
	}
	if err := pet.Wash(ctx); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("%s %s is clean again. ✨", pet, pet.Name)
}

func (p *performer) shear(ctx context.Context, space *world.Space) string {
	pet, err := space.GetPet(ctx)
	if err != nil {
		return renderError(err)
	}
	wool, err := pet.Shear(ctx)
	if err != nil {
		return renderError(err)
	}
	if len(wool) == 0 {
		return fmt.Sprintf("The fur of %s %s is not long enough yet.", pet, pet.Name)
	}
	return fmt.Sprintf("You sheared %s from %s %s. 😊", strings.Join(wool, " "), pet, pet.Name)
}

func (p *performer) dress(ctx context.Context, space *world.Space, clothing string) string {
	pet, err := space.GetPet(ctx)
	if err != nil {
		return renderError(err)
	}
	if pet.Clothing == clothing {
		if err := pet.Dress(ctx, ""); err != nil {
			return renderError(err)
		}
		return fmt.Sprintf("You take the %s off again.", clothing)
	}
	if err := pet.Dress(ctx, clothing); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("🐕%s %s looks fabulous. 😊", clothing, pet.Name)
}

func (p *performer) craft(ctx context.Context, space *world.Space, blueprint string) string {
	item, err := space.Craft(ctx, blueprint)
	if err != nil {
		return renderError(err)
	}
	if item != nil {
		return fmt.Sprintf("You crafted a %s. 😊", item)
	}
	return fmt.Sprintf("You crafted a %s. 😊", blueprint)
}

func (p *performer) rename(ctx context.Context, space *world.Space, name string) string {
	pet, err := space.GetPet(ctx)
	if err != nil {
		return renderError(err)
	}
	if err := pet.ChangeName(ctx, name); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("%s likes its new name. 😊", strings.TrimSpace(name))
}

func (p *performer) startHike(ctx context.Context, space *world.Space) string {
	hike, err := space.Hike(ctx)
	if err != nil {
		return renderError(err)
	}
	p.hike = hike
	return "🧭 You go hiking. Move with four directions, e.g. ➡️➡️⬆️⬆️.\n\n" + hike.Text(false)
}

func (p *performer) move(ctx context.Context, tokens []string) string {
	hike := p.hike
	move, err := hike.Move(ctx, tokens)
	if err != nil {
		return renderError(err)
	}

	var text strings.Builder
	text.WriteString(hike.Text(false))
	last := move[len(move)-1]
	switch {
	case hike.Finished():
		p.hike = nil
		text.WriteString("\n\n📍 You reached the destination and head home.")
		if gathered := hike.Gathered(); len(gathered) > 0 {
			text.WriteString(fmt.Sprintf(" You brought %s back. 😊", strings.Join(gathered, " ")))
		}
	case last.Tile == "🌳" || last.Tile == "🌲":
		text.WriteString(fmt.Sprintf("\n\n%s You ran into a tree.", last.Tile))
	}
	return text.String()
}

func (p *performer) talk(ctx context.Context, space *world.Space) string {
	characters, err := space.GetCharacters(ctx)
	if err != nil {
		return renderError(err)
	}
	for _, character := range characters {
		if character.Avatar != "👻" {
			continue
		}
		message, err := character.Talk(ctx)
		if err != nil {
			return renderError(err)
		}
		return renderGhostMessage(message)
	}
	return "There is no one to talk to."
}

// renderGhostMessage maps the ghost's dialogue tags to text.
func renderGhostMessage(message world.Message) string {
	var text string
	switch message.ID {
	case "initial", "ghost-sewing-hello":
		text = "👻 Booo! Don't be afraid, friend."
	case "ghost-sewing-daughter":
		text = "👻 Long ago, I used to sew little gifts for my daughter."
	case "ghost-sewing-request":
		text = fmt.Sprintf("👻 Could you bring me %s so I can sew one last time?",
			strings.Join(message.Request, ""))
	case "ghost-sewing-blueprint":
		text = "👻 Thank you! Let me show you how to craft a 🪡 of your own."
	case "ghost-sewing-goodbye":
		text = "👻 My work here is done. Farewell, friend!"
	default:
		text = "👻 …"
	}
	if len(message.Taken) > 0 {
		text = fmt.Sprintf("You hand over %s.\n\n%s", strings.Join(message.Taken, ""), text)
	}
	return text
}

func (p *performer) overview(ctx context.Context, space *world.Space) string {
	pet, err := space.GetPet(ctx)
	if err != nil {
		return renderError(err)
	}
	furniture, err := space.GetFurniture(ctx)
	if err != nil {
		return renderError(err)
	}
	blueprints, err := space.GetBlueprints(ctx)
	if err != nil {
		return renderError(err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s %s", pet, pet.Name)
	if !pet.Hatched {
		text.Reset()
		fmt.Fprintf(&text, "🥚 A quiet egg")
	}
	item, activity, err := pet.GetActivity(ctx)
	if err == nil {
		if item != nil {
			fmt.Fprintf(&text, " %s", item)
		} else if activity != "" {
			fmt.Fprintf(&text, " %s", activity)
		}
	}
	text.WriteString("\n")
	fmt.Fprintf(&text, "Items: %s\n", strings.Join(space.Items, " "))
	fmt.Fprintf(&text, "Tools: %s\n", strings.Join(space.Tools, " "))
	fmt.Fprintf(&text, "Blueprints: %s\n", strings.Join(blueprints, " "))
	if len(furniture) > 0 {
		pieces := make([]string, len(furniture))
		for i, item := range furniture {
			pieces[i] = item.String()
		}
		fmt.Fprintf(&text, "Furniture: %s\n", strings.Join(pieces, " "))
	}
	return strings.TrimRight(text.String(), "\n")
}

// renderReceipt renders a gathering receipt: the receipt items on success,
// the empty text when there was nothing to collect.
func renderReceipt(receipt []string, okFormat, emptyText string) string {
	if len(receipt) == 0 {
		return emptyText
	}
	return fmt.Sprintf(okFormat, strings.Join(receipt, " "))
}

// renderError maps domain errors to friendly chat replies.
func renderError(err error) string {
	switch {
	case errors.Is(err, world.ErrMissingTool):
		return fmt.Sprintf("You need a %s for that.", lastToken(err))
	case errors.Is(err, world.ErrInsufficientResources):
		return "You do not have the materials for that yet."
	case errors.Is(err, world.ErrUnknownBlueprint):
		return "You have not learned that blueprint yet."
	case errors.Is(err, world.ErrUnknownPattern):
		return "You do not know that pattern."
	case errors.Is(err, world.ErrUnknownItem):
		return "Hm, that is not a thing around here."
	case errors.Is(err, world.ErrPetFull):
		return "Your pet is full and politely declines."
	case errors.Is(err, world.ErrPetClean):
		return "Your pet is already squeaky clean."
	case errors.Is(err, world.ErrBlankName):
		return "A name cannot be empty."
	case errors.Is(err, world.ErrBadMoveLength):
		return "A move is exactly four directions, e.g. ➡️➡️⬆️⬆️."
	case errors.Is(err, world.ErrBadDirection):
		return "You can only move with ➡️⬇️⬅️⬆️."
	case errors.Is(err, world.ErrHikeFinished):
		return "The hike is over. Start a new one with 🧭."
	case errors.Is(err, world.ErrDebugDisabled):
		return "Debug commands are disabled."
	default:
		return fmt.Sprintf("Oops, something went wrong: %v", err)
	}
}

// lastToken extracts the trailing symbol of an error message, e.g. the tool
// a wrapped ErrMissingTool names.
func lastToken(err error) string {
	fields := strings.Fields(err.Error())
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func contains(items []string, item string) bool {
	for _, held := range items {
		if held == item {
			return true
		}
	}
	return false
}
