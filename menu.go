package grove

import "fmt"

// Backdrop tags the menu controller spawns for its two phases.
const (
	MainMenuTag = "main_menu"
	GameOverTag = "game_over"
)

// MenuTable names the three phases the menu controller moves between.
type MenuTable[P comparable] struct {
	Menu     P // main menu: start or quit
	Play     P // entered from Menu on start
	GameOver P // end of a round: return to Menu or quit
}

// MenuOutcome is the result of one menu decision. At most one of Next and
// Quit is set.
type MenuOutcome[P comparable] struct {
	Next    P
	HasNext bool
	Quit    bool
}

// Decide maps the current phase and this cycle's input edges to a
// transition. Phases other than Menu and GameOver never produce one.
// When several commands arrive in one cycle the earlier check wins:
// start (or return) before quit.
func (t MenuTable[P]) Decide(current P, in InputSource) MenuOutcome[P] {
	switch current {
	case t.Menu:
		if in.JustPressed(ActionStart) {
			return MenuOutcome[P]{Next: t.Play, HasNext: true}
		}
		if in.JustPressed(ActionQuit) {
			return MenuOutcome[P]{Quit: true}
		}
	case t.GameOver:
		if in.JustPressed(ActionReturn) {
			return MenuOutcome[P]{Next: t.Menu, HasNext: true}
		}
		if in.JustPressed(ActionQuit) {
			return MenuOutcome[P]{Quit: true}
		}
	}
	return MenuOutcome[P]{}
}

// Backdrop returns the asset tag displayed while current is a menu phase.
func (t MenuTable[P]) Backdrop(current P) (string, error) {
	switch current {
	case t.Menu:
		return MainMenuTag, nil
	case t.GameOver:
		return GameOverTag, nil
	}
	return "", fmt.Errorf("grove: backdrop for %v: %w", current, ErrUnknownMenuPhase)
}

// MenuSystem adapts Decide to a tick system.
func MenuSystem[P comparable](t MenuTable[P]) System[*Frame[P]] {
	return func(f *Frame[P]) error {
		out := t.Decide(f.Phase(), f.Input)
		switch {
		case out.HasNext:
			f.Next(out.Next)
		case out.Quit:
			f.Quit()
		}
		return nil
	}
}
