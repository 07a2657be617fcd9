package grove

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// DespawnAll removes every entity carrying component c and returns how many
// were removed. Entities are collected first so the query is never iterated
// while the world is being modified.
func DespawnAll(w donburi.World, c donburi.IComponentType) int {
	var doomed []donburi.Entity
	donburi.NewQuery(filter.Contains(c)).Each(w, func(e *donburi.Entry) {
		doomed = append(doomed, e.Entity())
	})
	for _, ent := range doomed {
		w.Remove(ent)
	}
	return len(doomed)
}

// Cleanup returns an exit system that despawns every entity tagged with tag.
// Any phase that spawns phase-local entities should register it (App does
// this through PhaseBuilder.Owns) so nothing leaks into the next phase.
func Cleanup[P comparable](tag donburi.IComponentType) System[*Frame[P]] {
	return func(f *Frame[P]) error {
		DespawnAll(f.World, tag)
		return nil
	}
}
