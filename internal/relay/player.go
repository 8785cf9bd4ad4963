package relay

import (
	"time"

	"github.com/google/uuid"
)

// Default budgets applied when the host does not choose their own.
const (
	DefaultBaseSeconds      = 60
	DefaultPassLimit        = 0
	DefaultWrongAnswerLimit = 5
)

// AnswerRecord is one submission in a player's history. Diagnostic
// only, never consulted by game logic.
type AnswerRecord struct {
	Text    string        `json:"text"`
	At      time.Time     `json:"at"`
	Elapsed time.Duration `json:"elapsed"`
	Correct bool          `json:"correct"`
}

// Player holds one participant's configured budgets and runtime state.
// Configured fields never change after creation; runtime fields reset
// together on every game start.
type Player struct {
	ID               string
	Name             string
	BaseSeconds      int
	PassLimit        int
	WrongAnswerLimit int

	RemainingPasses       int
	RemainingWrongAnswers int
	Eliminated            bool

	CorrectAnswers []AnswerRecord
	WrongAnswers   []AnswerRecord
}

// NewPlayer creates a player with a fresh opaque id.
func NewPlayer(name string, baseSeconds, passLimit, wrongAnswerLimit int) *Player {
	return &Player{
		ID:               uuid.NewString()[:8],
		Name:             name,
		BaseSeconds:      baseSeconds,
		PassLimit:        passLimit,
		WrongAnswerLimit: wrongAnswerLimit,
	}
}

// ResetRuntime restores budgets to their configured limits and clears
// elimination and history. Runs for every player on game start.
func (p *Player) ResetRuntime() {
	p.RemainingPasses = p.PassLimit
	p.RemainingWrongAnswers = p.WrongAnswerLimit
	p.Eliminated = false
	p.CorrectAnswers = nil
	p.WrongAnswers = nil
}

// ConsumeWrongAnswer decrements the wrong-answer budget. A false return
// means the budget was already exhausted and nothing changed; the
// caller treats that as elimination.
func (p *Player) ConsumeWrongAnswer() bool {
	if p.RemainingWrongAnswers > 0 {
		p.RemainingWrongAnswers--
		return true
	}
	return false
}

// ResetWrongAnswers restores the wrong-answer budget to its limit.
// Runs after every correct answer by this player.
func (p *Player) ResetWrongAnswers() {
	p.RemainingWrongAnswers = p.WrongAnswerLimit
}

// CanPass reports whether a pass is still available.
func (p *Player) CanPass() bool { return p.RemainingPasses > 0 }

// ConsumePass decrements the pass budget, refusing when exhausted.
func (p *Player) ConsumePass() bool {
	if !p.CanPass() {
		return false
	}
	p.RemainingPasses--
	return true
}

// RecordAnswer appends a normalized, timestamped record to the correct
// or wrong history. elapsed is the marker since game start.
func (p *Player) RecordAnswer(text string, correct bool, elapsed time.Duration) {
	rec := AnswerRecord{
		Text:    Normalize(text),
		At:      time.Now().UTC(),
		Elapsed: elapsed,
		Correct: correct,
	}
	if correct {
		p.CorrectAnswers = append(p.CorrectAnswers, rec)
	} else {
		p.WrongAnswers = append(p.WrongAnswers, rec)
	}
}
