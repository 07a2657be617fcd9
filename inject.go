package grove

// ScriptedInput replays queued input, one step per cycle. It stands in for
// the keyboard in headless runs and tests. A step is consumed by Update at
// the start of the cycle; JustPressed reports the actions of the consumed
// step and Pressed additionally reports held actions.
type ScriptedInput struct {
	queue   [][]Action
	current map[Action]bool
	held    map[Action]bool
}

// NewScriptedInput returns an empty script.
func NewScriptedInput() *ScriptedInput {
	return &ScriptedInput{
		current: make(map[Action]bool),
		held:    make(map[Action]bool),
	}
}

// Press queues a step on which every action in actions is just pressed.
func (s *ScriptedInput) Press(actions ...Action) {
	step := make([]Action, len(actions))
	copy(step, actions)
	s.queue = append(s.queue, step)
}

// Wait queues frames steps with no presses.
func (s *ScriptedInput) Wait(frames int) {
	for i := 0; i < frames; i++ {
		s.queue = append(s.queue, nil)
	}
}

// Hold marks a as held until Release. Held actions do not produce press edges.
func (s *ScriptedInput) Hold(a Action) {
	s.held[a] = true
}

// Release clears a held action.
func (s *ScriptedInput) Release(a Action) {
	delete(s.held, a)
}

// Len returns the number of steps still queued.
func (s *ScriptedInput) Len() int {
	return len(s.queue)
}

// Update pops the next step. With an empty queue no action is just pressed.
func (s *ScriptedInput) Update() {
	clear(s.current)
	if len(s.queue) == 0 {
		return
	}
	step := s.queue[0]
	copy(s.queue, s.queue[1:])
	s.queue = s.queue[:len(s.queue)-1]
	for _, a := range step {
		s.current[a] = true
	}
}

// JustPressed reports whether a was pressed on the current step.
func (s *ScriptedInput) JustPressed(a Action) bool {
	return s.current[a]
}

// Pressed reports whether a was pressed on the current step or is held.
func (s *ScriptedInput) Pressed(a Action) bool {
	return s.current[a] || s.held[a]
}
