// Package grove is a small 2D game framework for [Ebitengine] built around
// a donburi ECS world.
//
// It supplies the infrastructure every small game rewrites: a phase
// scheduler, an asynchronous asset pipeline with a loading gate, a menu
// controller and a fixed-timestep physics integrator.
//
// # Quick start
//
// Define the phases of the game as a comparable type whose zero value is
// the loading phase, then wire the built-in controllers into an [App]:
//
//	type Phase int
//
//	const (
//		Loading Phase = iota
//		MainMenu
//		Playing
//		GameOver
//	)
//
//	app := grove.NewApp[Phase](cfg, log).
//		AddImage("ship", "ship.png").
//		AddImage(grove.MainMenuTag, "main_menu.png").
//		AddImage(grove.GameOverTag, "game_over.png").
//		Loading(Loading, MainMenu).
//		Menus(grove.MenuTable[Phase]{Menu: MainMenu, Play: Playing, GameOver: GameOver})
//	app.Phase(Playing).OnEnter(setup).OnTick(movement).Owns(GameElement).WithPhysics()
//	if err := app.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// # Phases
//
// A [Scheduler] runs the enter, tick and exit systems of the current phase.
// Transitions requested through [Frame.Next] are applied at the start of the
// next cycle: exit systems of the old phase run before enter systems of the
// new one, and enter systems run before the new phase's first tick.
//
// # Assets
//
// Assets are registered by tag on an [AssetManager], which checks that each
// source file exists. The loading phase activates the manager, which issues
// one load request per asset into the [AssetStore], and a [LoadingGate]
// polls the backend until every request resolved. Sprite sheets are loaded
// as a base image and partitioned into a [SpriteSheet] only after the whole
// pending set is complete.
//
// # Physics
//
// [Physics] advances at a fixed 33ms step regardless of frame rate, firing
// at most one step per cycle. Each step applies gravity, drains queued
// impulses and integrates velocity into position.
//
// # Configuration and logging
//
// [LoadConfig] reads grove.toml; [NewLogger] builds the zap logger the
// framework writes to.
//
// [Ebitengine]: https://ebitengine.org
package grove
