package grove

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// drawOverlay prints the loading progress while the gate waits and, when
// Window.ShowFPS is set, the current FPS and TPS.
func (a *App[P]) drawOverlay(screen *ebiten.Image) {
	var text string
	if a.hasGate && a.gate != nil && a.gate.State() == GateWaiting && a.sched.Current() == a.loading {
		text = fmt.Sprintf("%d assets remaining\n", a.gate.Remaining())
	}
	if a.cfg.Window.ShowFPS {
		text += fmt.Sprintf("FPS: %.1f\nTPS: %.1f\n", ebiten.ActualFPS(), ebiten.ActualTPS())
	}
	if text != "" {
		ebitenutil.DebugPrint(screen, text)
	}
}
