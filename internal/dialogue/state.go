package dialogue

// Mode identifies which multi-step sub-dialogue, if any, is active.
type Mode int

const (
	ModeNormal Mode = iota
	ModePromptPractice
	ModeEthicsDilemma
	ModeSermonPromptAssist
)

func (m Mode) String() string {
	switch m {
	case ModePromptPractice:
		return "prompt_practice"
	case ModeEthicsDilemma:
		return "ethics_dilemma"
	case ModeSermonPromptAssist:
		return "sermon_prompt_assist"
	default:
		return "normal"
	}
}

// State tracks one session's position within a sub-dialogue. Data
// accumulates the user-supplied fragments across steps (scripture,
// audience, themes, ...). Mode is Normal exactly when Step is 0 and
// no sub-dialogue is pending.
type State struct {
	Mode Mode
	Step int
	Data map[string]string
}

func NewState() *State {
	return &State{Data: make(map[string]string)}
}

// Reset returns the state to Normal and discards any accumulated
// sub-dialogue fragments.
func (s *State) Reset() {
	s.Mode = ModeNormal
	s.Step = 0
	s.Data = make(map[string]string)
}
