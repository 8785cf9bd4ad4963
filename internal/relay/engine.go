// Package relay implements the turn engine for an elimination-style
// word-relay quiz: a host-operated rotation of players answering from a
// themed catalog under per-turn time, pass, and wrong-answer budgets.
//
// The engine is not safe for concurrent use; the caller serializes all
// operations and drives elapsed-time accounting by calling Tick
// periodically. State changes surface through the Hooks callback table,
// so the engine runs headless and is testable without any transport or
// rendering attached.
package relay

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Level classifies notifications for the observer.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// SoundKind is a sound intent; actual playback belongs to the
// presentation layer.
type SoundKind string

const (
	SoundCorrect SoundKind = "correct"
	SoundWrong   SoundKind = "wrong"
)

var (
	ErrNoCatalog        = errors.New("no catalog loaded")
	ErrNoPlayers        = errors.New("no players registered")
	ErrNoActivePlayer   = errors.New("no active player")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotCurrentPlayer = errors.New("not the current player")
	ErrGameRunning      = errors.New("game is running")
)

// ValidationError reports a rejected argument, such as an empty or
// duplicate player name.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PlayerSnapshot is the read-only view of a player published to
// observers.
type PlayerSnapshot struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	BaseSeconds           int    `json:"baseSeconds"`
	PassLimit             int    `json:"passLimit"`
	WrongAnswerLimit      int    `json:"wrongAnswerLimit"`
	RemainingMillis       int64  `json:"remainingMillis"`
	RemainingPasses       int    `json:"remainingPasses"`
	RemainingWrongAnswers int    `json:"remainingWrongAnswers"`
	Eliminated            bool   `json:"eliminated"`
}

// CatalogMeta describes a freshly loaded catalog.
type CatalogMeta struct {
	Total int `json:"total"`
}

// Hooks is the engine's observer table, one optional subscriber per
// channel. Nil fields are skipped.
type Hooks struct {
	Notification   func(level Level, message string)
	PlayerAdded    func(p PlayerSnapshot)
	PlayerState    func(p PlayerSnapshot)
	GameEnded      func(reason string)
	CatalogLoaded  func(meta CatalogMeta)
	AnswersUpdated func(remaining, answeredNewestFirst []string)
	Sound          func(kind SoundKind)
	AllPlayers     func(players []PlayerSnapshot)
	CurrentPlayer  func(name string, ok bool)
	RunningState   func(running bool)
}

// turnState is the active player's live countdown. It is replaced on
// every turn change and never stored on the Player itself.
type turnState struct {
	playerID        string
	remainingMillis int64
}

// Engine orchestrates the player rotation, the countdown, answer
// adjudication, and end-of-game detection for one session.
type Engine struct {
	hooks Hooks

	players    []*Player
	catalog    *Catalog
	currentIdx int
	running    bool

	turn          *turnState
	lastCategory  string
	answeredOrder []string

	startedAt time.Time
	lastTick  time.Time

	now func() time.Time // swapped in tests
}

// New returns an idle engine with no catalog and no players.
func New(hooks Hooks) *Engine {
	return &Engine{hooks: hooks, now: time.Now}
}

// LoadCatalog replaces the current catalog with one parsed from the
// given tabular records. Chronology is rebuilt from entries the records
// already mark answered. Never fails; malformed records are skipped
// during parsing.
func (e *Engine) LoadCatalog(rows [][]string) {
	e.catalog = ParseRows(rows)
	e.answeredOrder = e.catalog.Consumed()

	if e.hooks.CatalogLoaded != nil {
		e.hooks.CatalogLoaded(CatalogMeta{Total: e.catalog.Size()})
	}
	e.emitAnswersUpdated()
	e.notify(LevelInfo, fmt.Sprintf("catalog loaded: %d entries", e.catalog.Size()))
	e.emitAllPlayers()
}

// AddPlayer registers a player. The name must be non-empty, at most 60
// runes, and unique among registered players after normalization.
func (e *Engine) AddPlayer(name string, baseSeconds, passLimit, wrongAnswerLimit int) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 60 {
		e.notify(LevelError, "player name must be 1 to 60 characters")
		return &ValidationError{Msg: "player name must be 1 to 60 characters"}
	}
	if e.findPlayer(name) >= 0 {
		e.notify(LevelError, "player name already exists: "+name)
		return &ValidationError{Msg: "player name already exists: " + name}
	}

	if baseSeconds <= 0 {
		baseSeconds = DefaultBaseSeconds
	}
	passLimit = max(passLimit, 0)
	wrongAnswerLimit = max(wrongAnswerLimit, 0)

	p := NewPlayer(name, baseSeconds, passLimit, wrongAnswerLimit)
	p.ResetRuntime()
	e.players = append(e.players, p)

	if e.hooks.PlayerAdded != nil {
		e.hooks.PlayerAdded(e.snapshot(p))
	}
	e.notify(LevelInfo, "player added: "+name)
	e.emitRoster()
	return nil
}

// RemovePlayer drops every roster entry whose normalized name matches.
// The current-player index is clamped and observers are notified even
// when nothing matched.
func (e *Engine) RemovePlayer(name string) error {
	norm := Normalize(name)
	kept := e.players[:0]
	for _, p := range e.players {
		if Normalize(p.Name) != norm {
			kept = append(kept, p)
		}
	}
	removed := len(e.players) - len(kept)
	e.players = kept

	if removed > 0 {
		e.notify(LevelInfo, fmt.Sprintf("players removed: %d", removed))
	} else {
		e.notify(LevelError, "player not found: "+name)
	}
	e.clampIndex()
	e.emitRoster()

	if removed == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// StartGame resets every player's runtime state, rewinds the rotation
// to the first player, and begins the countdown. Fails without
// mutation when no catalog is loaded or the roster is empty.
func (e *Engine) StartGame() error {
	if e.catalog == nil {
		e.notify(LevelError, "load an answer catalog first")
		return ErrNoCatalog
	}
	if len(e.players) == 0 {
		e.notify(LevelError, "no players registered")
		return ErrNoPlayers
	}

	for _, p := range e.players {
		p.ResetRuntime()
	}
	e.currentIdx = 0
	e.running = true
	e.turn = nil
	now := e.now()
	e.startedAt = now
	e.lastTick = now

	e.notify(LevelInfo, "game started")
	e.emitRoster()
	e.emitRunningState()
	if p := e.activePlayer(); p != nil {
		e.turn = &turnState{playerID: p.ID, remainingMillis: int64(p.BaseSeconds) * 1000}
		e.emitPlayerState(p)
	}
	return nil
}

// StopGame transitions to idle and fires the game-ended notification.
// Idempotent: stopping an already idle engine notifies again but
// changes nothing.
func (e *Engine) StopGame() {
	e.running = false
	e.notify(LevelInfo, "game stopped")
	if e.hooks.GameEnded != nil {
		e.hooks.GameEnded("stopped")
	}
	e.emitRoster()
	e.emitRunningState()
}

// Tick charges wall time elapsed since the previous tick against the
// active player's countdown. At zero the player is eliminated and the
// turn advances. No-op while idle.
func (e *Engine) Tick() {
	if !e.running {
		return
	}
	now := e.now()
	if e.lastTick.IsZero() {
		e.lastTick = now
		return
	}
	elapsed := now.Sub(e.lastTick)
	e.lastTick = now

	p := e.activePlayer()
	if p == nil {
		e.notify(LevelInfo, "no active player")
		e.endIfFinished()
		e.emitRoster()
		return
	}

	if e.turn == nil || e.turn.playerID != p.ID {
		// The rotation changed without a turn handoff, e.g. the active
		// player was removed mid-game. Start this player's turn fresh.
		e.turn = &turnState{playerID: p.ID, remainingMillis: int64(p.BaseSeconds) * 1000}
	}

	e.turn.remainingMillis -= elapsed.Milliseconds()
	if e.turn.remainingMillis <= 0 {
		e.turn.remainingMillis = 0
		p.Eliminated = true
		e.notify(LevelInfo, p.Name+" ran out of time")
		e.emitPlayerState(p)
		e.advanceTurn("timeout")
	} else {
		e.emitPlayerState(p)
	}
	e.emitRoster()
}

// ResetClock re-captures the elapsed-time reference without charging
// the interval to the active player. The host signals this around
// pauses, e.g. while typing, so paused time is not counted.
func (e *Engine) ResetClock() {
	if !e.running {
		return
	}
	e.lastTick = e.now()
}

// SubmitAnswer adjudicates free text for the active player. A trailing
// parenthetical (full-width or ASCII) narrows the matching text to the
// rightmost pair's interior. Returns whether the answer was correct.
func (e *Engine) SubmitAnswer(text string) (bool, error) {
	p := e.activePlayer()
	if p == nil {
		e.notify(LevelError, "no active player")
		return false, ErrNoActivePlayer
	}
	if e.catalog == nil {
		e.notify(LevelError, "no answer catalog loaded")
		return false, ErrNoCatalog
	}

	answerText := extractAnswer(text)
	prev := e.lastCategory
	matched, ok := e.catalog.FindMatch(answerText, prev)
	p.RecordAnswer(text, ok, e.sinceStart())

	if ok {
		e.catalog.MarkUsed(answerText, prev)
		if !slices.Contains(e.answeredOrder, matched) {
			e.answeredOrder = append(e.answeredOrder, matched)
		}
		e.lastCategory = e.catalog.Category(matched)
		p.ResetWrongAnswers()

		e.emitAnswersUpdated()
		e.emitSound(SoundCorrect)
		e.notify(LevelInfo, fmt.Sprintf("%s answered correctly: %s", p.Name, text))
		e.emitPlayerState(p)
		e.advanceTurn("correct")
		e.emitRoster()
		return true, nil
	}

	// A wrong answer can still name a category; keep the inference
	// current for short-form matching.
	e.inferCategory(Normalize(answerText))

	if !p.ConsumeWrongAnswer() {
		p.Eliminated = true
		e.notify(LevelInfo, p.Name+" reached the wrong-answer limit")
		e.emitPlayerState(p)
		e.advanceTurn("wrong_limit")
		e.emitRoster()
		return false, nil
	}
	e.notify(LevelInfo, fmt.Sprintf("%s answered incorrectly: %s (%d wrong answers left)",
		p.Name, text, p.RemainingWrongAnswers))
	e.emitPlayerState(p)
	e.emitSound(SoundWrong)
	e.emitRoster()
	return false, nil
}

// Pass spends one of the active player's passes and advances the turn.
// Returns false without advancing when no passes remain; that is an
// expected outcome, not an error.
func (e *Engine) Pass() (bool, error) {
	p := e.activePlayer()
	if p == nil {
		e.notify(LevelError, "no active player")
		return false, ErrNoActivePlayer
	}
	if !p.ConsumePass() {
		e.notify(LevelInfo, "no passes left")
		e.emitRoster()
		return false, nil
	}
	e.notify(LevelInfo, fmt.Sprintf("%s used a pass (%d left)", p.Name, p.RemainingPasses))
	e.emitPlayerState(p)
	e.advanceTurn("pass")
	e.emitRoster()
	return true, nil
}

// Forfeit force-eliminates the named player no matter whose turn it
// is. The turn advances only when the forfeited player was active.
func (e *Engine) Forfeit(name string) error {
	idx := e.findPlayer(name)
	if idx < 0 {
		e.notify(LevelError, "player not found: "+name)
		return ErrPlayerNotFound
	}
	p := e.players[idx]
	if p.Eliminated {
		e.notify(LevelInfo, p.Name+" is already eliminated")
		return nil
	}

	wasActive := e.activePlayer() == p
	p.Eliminated = true
	e.notify(LevelInfo, p.Name+" forfeited")
	e.emitPlayerState(p)
	if wasActive {
		e.advanceTurn("forfeit")
	}
	e.emitRoster()
	return nil
}

// Skip advances the turn without spending any budget, but only when
// name identifies the currently active player.
func (e *Engine) Skip(name string) error {
	p := e.activePlayer()
	if p == nil || Normalize(p.Name) != Normalize(name) {
		e.notify(LevelError, "skip target is not the current player")
		return ErrNotCurrentPlayer
	}
	e.notify(LevelInfo, p.Name+" skipped")
	e.advanceTurn("skip")
	return nil
}

// UnmarkAnswer moves a consumed catalog entry back to pending and drops
// it from the chronology. Reports whether anything changed.
func (e *Engine) UnmarkAnswer(displayKey string) bool {
	if e.catalog == nil {
		e.notify(LevelError, "no answer catalog loaded")
		return false
	}
	if !e.catalog.Unmark(displayKey) {
		e.notify(LevelInfo, "entry is not marked answered: "+displayKey)
		return false
	}
	if i := slices.Index(e.answeredOrder, displayKey); i >= 0 {
		e.answeredOrder = slices.Delete(e.answeredOrder, i, i+1)
	}
	e.emitAnswersUpdated()
	e.notify(LevelInfo, "moved back to remaining: "+displayKey)
	return true
}

// ReorderPlayers rearranges the roster to follow the given name
// sequence; unnamed players keep their prior relative order at the end.
// Refused while a game is running.
func (e *Engine) ReorderPlayers(names []string) error {
	if e.running {
		e.notify(LevelError, "cannot reorder players while the game is running")
		return ErrGameRunning
	}
	if len(names) == 0 || len(e.players) == 0 {
		return nil
	}

	byName := make(map[string]*Player, len(e.players))
	for _, p := range e.players {
		byName[Normalize(p.Name)] = p
	}

	taken := make(map[*Player]bool, len(e.players))
	ordered := make([]*Player, 0, len(e.players))
	for _, name := range names {
		p, ok := byName[Normalize(name)]
		if ok && !taken[p] {
			ordered = append(ordered, p)
			taken[p] = true
		}
	}
	for _, p := range e.players {
		if !taken[p] {
			ordered = append(ordered, p)
		}
	}

	if slices.Equal(ordered, e.players) {
		return nil
	}
	e.players = ordered
	e.clampIndex()
	e.emitRoster()
	return nil
}

// MovePlayer repositions one player. targetIndex is a pre-removal
// insertion point: moving forward shifts the effective slot back by
// one to account for the gap the removal closes. Refused while a game
// is running.
func (e *Engine) MovePlayer(name string, targetIndex int) error {
	if e.running {
		e.notify(LevelError, "cannot reorder players while the game is running")
		return ErrGameRunning
	}
	origIdx := e.findPlayer(name)
	if origIdx < 0 {
		e.notify(LevelError, "player not found: "+name)
		return ErrPlayerNotFound
	}

	n := len(e.players)
	targetIndex = max(0, min(targetIndex, n))
	insertAt := targetIndex
	if targetIndex > origIdx {
		insertAt = targetIndex - 1
	}
	if insertAt == origIdx {
		return nil
	}

	p := e.players[origIdx]
	e.players = slices.Delete(e.players, origIdx, origIdx+1)
	insertAt = max(0, min(insertAt, len(e.players)))
	e.players = slices.Insert(e.players, insertAt, p)

	e.clampIndex()
	e.emitRoster()
	return nil
}

// CurrentPlayer resolves and returns the active player's name. ok is
// false when the roster is empty or everyone is eliminated.
func (e *Engine) CurrentPlayer() (string, bool) {
	p := e.activePlayer()
	if p == nil {
		return "", false
	}
	return p.Name, true
}

// Running reports whether a game is in progress.
func (e *Engine) Running() bool { return e.running }

// HasCatalog reports whether a catalog is loaded.
func (e *Engine) HasCatalog() bool { return e.catalog != nil }

// CatalogSize is the loaded catalog's total entry count, 0 without one.
func (e *Engine) CatalogSize() int {
	if e.catalog == nil {
		return 0
	}
	return e.catalog.Size()
}

// Remaining lists unconsumed display keys in catalog order.
func (e *Engine) Remaining() []string {
	if e.catalog == nil {
		return nil
	}
	return e.catalog.Remaining()
}

// Answered lists consumed display keys newest first.
func (e *Engine) Answered() []string {
	answered := make([]string, len(e.answeredOrder))
	for i, key := range e.answeredOrder {
		answered[len(answered)-1-i] = key
	}
	return answered
}

// Players snapshots the full roster in rotation order.
func (e *Engine) Players() []PlayerSnapshot {
	snaps := make([]PlayerSnapshot, len(e.players))
	for i, p := range e.players {
		snaps[i] = e.snapshot(p)
	}
	return snaps
}

// PlayerHistory returns copies of a player's submission records for
// this game, oldest first.
func (e *Engine) PlayerHistory(name string) (correct, wrong []AnswerRecord, err error) {
	idx := e.findPlayer(name)
	if idx < 0 {
		return nil, nil, ErrPlayerNotFound
	}
	p := e.players[idx]
	return slices.Clone(p.CorrectAnswers), slices.Clone(p.WrongAnswers), nil
}

// SaveRows emits the catalog's current state as tabular records.
func (e *Engine) SaveRows() ([][]string, error) {
	if e.catalog == nil {
		return nil, ErrNoCatalog
	}
	return e.catalog.Rows(), nil
}

// activePlayer scans forward from the stored index, wrapping once, for
// the first non-eliminated player. The found index is persisted. Nil
// when the roster is empty or fully eliminated.
func (e *Engine) activePlayer() *Player {
	n := len(e.players)
	if n == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		idx := (e.currentIdx + i) % n
		if !e.players[idx].Eliminated {
			e.currentIdx = idx
			return e.players[idx]
		}
	}
	return nil
}

// advanceTurn is the single turn-transition point shared by every event
// path. The end-of-game check runs first and routes through StopGame,
// which never re-enters advancement.
func (e *Engine) advanceTurn(reason string) {
	if e.endIfFinished() {
		return
	}
	n := len(e.players)
	if n == 0 {
		e.notify(LevelInfo, "no players registered")
		return
	}
	e.notify(LevelDebug, "advancing turn: "+reason)

	for i := 1; i <= n; i++ {
		cand := (e.currentIdx + i) % n
		if !e.players[cand].Eliminated {
			e.currentIdx = cand
			break
		}
	}
	if p := e.activePlayer(); p != nil {
		e.turn = &turnState{playerID: p.ID, remainingMillis: int64(p.BaseSeconds) * 1000}
		e.emitPlayerState(p)
	}
	e.emitRoster()
}

// endIfFinished stops the game when everyone is eliminated or the
// catalog is exhausted, exactly as if the host pressed stop.
func (e *Engine) endIfFinished() bool {
	if len(e.players) > 0 {
		all := true
		for _, p := range e.players {
			if !p.Eliminated {
				all = false
				break
			}
		}
		if all {
			e.StopGame()
			return true
		}
	}
	if e.catalog != nil && e.catalog.RemainingCount() == 0 {
		e.StopGame()
		return true
	}
	return false
}

// inferCategory keeps lastCategory usefully current after a wrong
// answer: the longest known category key prefixing the text wins, with
// equal lengths resolved by catalog order.
func (e *Engine) inferCategory(normText string) {
	keys := e.catalog.categoryKeys()
	sort.SliceStable(keys, func(i, j int) bool {
		return utf8.RuneCountInString(keys[i]) > utf8.RuneCountInString(keys[j])
	})
	for _, key := range keys {
		if key != "" && strings.HasPrefix(normText, key) {
			e.lastCategory = key
			return
		}
	}
}

// extractAnswer narrows a submission to the rightmost parenthetical
// pair's interior. Full-width parentheses take precedence over ASCII;
// a reversed pair leaves the text untouched.
func extractAnswer(text string) string {
	if strings.Contains(text, "（") && strings.Contains(text, "）") {
		start, end := strings.LastIndex(text, "（"), strings.LastIndex(text, "）")
		if start < end {
			return text[start+len("（") : end]
		}
		return text
	}
	if strings.Contains(text, "(") && strings.Contains(text, ")") {
		start, end := strings.LastIndex(text, "("), strings.LastIndex(text, ")")
		if start < end {
			return text[start+1 : end]
		}
	}
	return text
}

func (e *Engine) findPlayer(name string) int {
	norm := Normalize(name)
	for i, p := range e.players {
		if Normalize(p.Name) == norm {
			return i
		}
	}
	return -1
}

func (e *Engine) clampIndex() {
	e.currentIdx = max(0, min(e.currentIdx, len(e.players)-1))
	if len(e.players) == 0 {
		e.currentIdx = 0
	}
}

func (e *Engine) sinceStart() time.Duration {
	if e.startedAt.IsZero() {
		return 0
	}
	return e.now().Sub(e.startedAt)
}

// remainingFor is the countdown reported for a player. Only the active
// player has a live turn countdown; eliminated players report zero and
// everyone else reports the full allotment.
func (e *Engine) remainingFor(p *Player) int64 {
	if p.Eliminated {
		return 0
	}
	if e.turn != nil && e.turn.playerID == p.ID {
		return e.turn.remainingMillis
	}
	return int64(p.BaseSeconds) * 1000
}

func (e *Engine) snapshot(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ID:                    p.ID,
		Name:                  p.Name,
		BaseSeconds:           p.BaseSeconds,
		PassLimit:             p.PassLimit,
		WrongAnswerLimit:      p.WrongAnswerLimit,
		RemainingMillis:       e.remainingFor(p),
		RemainingPasses:       p.RemainingPasses,
		RemainingWrongAnswers: p.RemainingWrongAnswers,
		Eliminated:            p.Eliminated,
	}
}

func (e *Engine) notify(level Level, message string) {
	if e.hooks.Notification != nil {
		e.hooks.Notification(level, message)
	}
}

func (e *Engine) emitPlayerState(p *Player) {
	if e.hooks.PlayerState != nil {
		e.hooks.PlayerState(e.snapshot(p))
	}
}

func (e *Engine) emitAllPlayers() {
	if e.hooks.AllPlayers != nil {
		e.hooks.AllPlayers(e.Players())
	}
}

func (e *Engine) emitCurrentPlayer() {
	if e.hooks.CurrentPlayer != nil {
		name, ok := e.CurrentPlayer()
		e.hooks.CurrentPlayer(name, ok)
	}
}

// emitRoster pairs the full-roster and current-player notifications,
// the tail of nearly every operation.
func (e *Engine) emitRoster() {
	e.emitAllPlayers()
	e.emitCurrentPlayer()
}

func (e *Engine) emitRunningState() {
	if e.hooks.RunningState != nil {
		e.hooks.RunningState(e.running)
	}
}

func (e *Engine) emitAnswersUpdated() {
	if e.hooks.AnswersUpdated != nil {
		e.hooks.AnswersUpdated(e.Remaining(), e.Answered())
	}
}

func (e *Engine) emitSound(kind SoundKind) {
	if e.hooks.Sound != nil {
		e.hooks.Sound(kind)
	}
}
