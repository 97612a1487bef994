package world

import "errors"

// Typed game errors. Callers classify outcomes with errors.Is; the
// presentation layer maps each kind to a distinct reply message.
var (
	// ErrNotFound indicates a referenced entity or index entry is missing.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientResources indicates the inventory cannot cover a cost.
	ErrInsufficientResources = errors.New("insufficient resources")
	// ErrMissingTool indicates a required tool is not owned.
	ErrMissingTool = errors.New("missing tool")
	// ErrUnknownBlueprint indicates a blueprint the space has not learned.
	ErrUnknownBlueprint = errors.New("unknown blueprint")
	// ErrUnknownPattern indicates an unknown clothing pattern.
	ErrUnknownPattern = errors.New("unknown pattern")
	// ErrUnknownItem indicates a symbol outside the item taxonomy.
	ErrUnknownItem = errors.New("unknown item")
	// ErrDebugDisabled indicates a debug-only operation without debug mode.
	ErrDebugDisabled = errors.New("debug mode disabled")
	// ErrDuplicateChat indicates the chat already has a space.
	ErrDuplicateChat = errors.New("duplicate chat")
	// ErrHikeFinished indicates a move on an already finished hike.
	ErrHikeFinished = errors.New("hike finished")
	// ErrBadMoveLength indicates a move with the wrong number of steps.
	ErrBadMoveLength = errors.New("bad move length")
	// ErrBadDirection indicates an unknown direction symbol.
	ErrBadDirection = errors.New("bad direction")
	// ErrUnreachable indicates no path to the requested tile exists.
	ErrUnreachable = errors.New("unreachable tile")
	// ErrBlankName indicates an empty name after trimming.
	ErrBlankName = errors.New("blank name")
	// ErrPetFull indicates feeding at maximal nutrition.
	ErrPetFull = errors.New("pet nutrition maximal")
	// ErrPetClean indicates washing at minimal dirt.
	ErrPetClean = errors.New("pet already clean")
)
