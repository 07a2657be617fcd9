package grove

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// cycleStats holds per-cycle timing. Only collected when Window.Debug is set.
type cycleStats struct {
	systemsTime   time.Duration
	fadesTime     time.Duration
	animationTime time.Duration
	entities      int
}

// debugStatsEvery is how many cycles pass between two debug stat lines.
const debugStatsEvery = 60

// debugLog writes the stats of one cycle at Debug level, once every
// debugStatsEvery cycles.
func (a *App[P]) debugLog(stats cycleStats) {
	if !a.cfg.Window.Debug || a.cycles%debugStatsEvery != 0 {
		return
	}
	total := stats.systemsTime + stats.fadesTime + stats.animationTime
	a.log.Debug("cycle stats",
		zap.Uint64("cycle", a.cycles),
		zap.Duration("systems", stats.systemsTime),
		zap.Duration("fades", stats.fadesTime),
		zap.Duration("animations", stats.animationTime),
		zap.Duration("total", total),
		zap.Int("entities", stats.entities),
	)
}

// debugMaxEntities is the entity count above which a warning is logged.
// A count this high usually means a phase spawns without owning its tag.
const debugMaxEntities = 10000

func (a *App[P]) debugCheckEntities(n int) {
	if n > debugMaxEntities && !a.warnedEntities {
		a.warnedEntities = true
		a.log.Warn("entity count exceeds threshold",
			zap.Int("entities", n),
			zap.Int("threshold", debugMaxEntities),
			zap.String("phase", phaseName(a.sched.Current())),
		)
	}
}

func phaseName(p any) string {
	return fmt.Sprint(p)
}
