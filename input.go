package grove

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action names a discrete input command. The core treats actions as opaque
// booleans; games may define their own beyond the built-in set.
type Action string

const (
	ActionStart  Action = "start"  // leave the main menu
	ActionQuit   Action = "quit"   // end the process from a menu
	ActionReturn Action = "return" // go back to the main menu from game over
	ActionLeft   Action = "left"
	ActionRight  Action = "right"
	ActionThrust Action = "thrust"
	ActionFlap   Action = "flap"
)

// InputSource exposes command state for the current cycle. It is polled
// once per cycle and must not block.
type InputSource interface {
	// JustPressed reports a press edge this cycle.
	JustPressed(a Action) bool
	// Pressed reports whether the command is held.
	Pressed(a Action) bool
}

// Updater is implemented by input sources that need to advance once at the
// start of every cycle.
type Updater interface {
	Update()
}

// KeyBindings maps each action to the keys that trigger it.
type KeyBindings map[Action][]ebiten.Key

// DefaultKeyBindings returns the bindings used by the example games.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		ActionStart:  {ebiten.KeyP},
		ActionQuit:   {ebiten.KeyQ},
		ActionReturn: {ebiten.KeyM},
		ActionLeft:   {ebiten.KeyArrowLeft},
		ActionRight:  {ebiten.KeyArrowRight},
		ActionThrust: {ebiten.KeyArrowUp},
		ActionFlap:   {ebiten.KeySpace},
	}
}

// Merge returns a copy of b with the actions in other replacing b's.
func (b KeyBindings) Merge(other KeyBindings) KeyBindings {
	out := make(KeyBindings, len(b)+len(other))
	for a, keys := range b {
		out[a] = keys
	}
	for a, keys := range other {
		out[a] = keys
	}
	return out
}

// KeyboardInput reads ebiten's keyboard state through a binding table.
type KeyboardInput struct {
	bindings KeyBindings
}

// NewKeyboardInput returns a keyboard source. A nil table selects
// DefaultKeyBindings.
func NewKeyboardInput(bindings KeyBindings) *KeyboardInput {
	if bindings == nil {
		bindings = DefaultKeyBindings()
	}
	return &KeyboardInput{bindings: bindings}
}

// JustPressed reports whether any key bound to a was pressed this tick.
func (k *KeyboardInput) JustPressed(a Action) bool {
	for _, key := range k.bindings[a] {
		if inpututil.IsKeyJustPressed(key) {
			return true
		}
	}
	return false
}

// Pressed reports whether any key bound to a is held.
func (k *KeyboardInput) Pressed(a Action) bool {
	for _, key := range k.bindings[a] {
		if ebiten.IsKeyPressed(key) {
			return true
		}
	}
	return false
}
