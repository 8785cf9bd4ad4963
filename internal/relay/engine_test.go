package relay

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// recorder captures hook emissions so tests can assert on the engine's
// outward behavior instead of its internals.
type recorder struct {
	sounds    []SoundKind
	ended     []string
	remaining []string
	answered  []string
	current   string
	currentOK bool
	running   bool
}

func newTestEngine(t *testing.T) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(Hooks{
		Sound:     func(kind SoundKind) { rec.sounds = append(rec.sounds, kind) },
		GameEnded: func(reason string) { rec.ended = append(rec.ended, reason) },
		AnswersUpdated: func(remaining, answered []string) {
			rec.remaining, rec.answered = remaining, answered
		},
		CurrentPlayer: func(name string, ok bool) { rec.current, rec.currentOK = name, ok },
		RunningState:  func(running bool) { rec.running = running },
	})
	return e, rec
}

// fakeClock pins the engine's clock and returns a function that moves
// it forward.
func fakeClock(e *Engine) func(time.Duration) {
	now := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func snapshotFor(t *testing.T, e *Engine, name string) PlayerSnapshot {
	t.Helper()
	for _, p := range e.Players() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no player named %q", name)
	return PlayerSnapshot{}
}

func mustAdd(t *testing.T, e *Engine, name string, baseSeconds, passLimit, wrongLimit int) {
	t.Helper()
	if err := e.AddPlayer(name, baseSeconds, passLimit, wrongLimit); err != nil {
		t.Fatalf("add player %s: %v", name, err)
	}
}

func TestStartGameValidation(t *testing.T) {
	e, _ := newTestEngine(t)

	if err := e.StartGame(); !errors.Is(err, ErrNoCatalog) {
		t.Fatalf("expected ErrNoCatalog, got %v", err)
	}
	e.LoadCatalog(lineRows())
	if err := e.StartGame(); !errors.Is(err, ErrNoPlayers) {
		t.Fatalf("expected ErrNoPlayers, got %v", err)
	}

	mustAdd(t, e, "田中", 0, 0, 5)
	if err := e.StartGame(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !e.Running() {
		t.Error("expected running state")
	}
	if name, ok := e.CurrentPlayer(); !ok || name != "田中" {
		t.Errorf("expected 田中 active, got %q ok=%v", name, ok)
	}
}

func TestAddPlayerValidation(t *testing.T) {
	e, _ := newTestEngine(t)

	var verr *ValidationError
	if err := e.AddPlayer("", 60, 0, 5); !errors.As(err, &verr) {
		t.Errorf("empty name: expected validation error, got %v", err)
	}
	if err := e.AddPlayer("   ", 60, 0, 5); !errors.As(err, &verr) {
		t.Errorf("blank name: expected validation error, got %v", err)
	}
	if err := e.AddPlayer(strings.Repeat("あ", 61), 60, 0, 5); !errors.As(err, &verr) {
		t.Errorf("long name: expected validation error, got %v", err)
	}

	mustAdd(t, e, "Tanaka", 60, 0, 5)
	// Duplicates are detected on the normalized form, so full-width
	// capitals collide with the ASCII original.
	if err := e.AddPlayer("ＴＡＮＡＫＡ", 60, 0, 5); !errors.As(err, &verr) {
		t.Errorf("duplicate name: expected validation error, got %v", err)
	}

	mustAdd(t, e, "佐藤", 0, -1, -1)
	snap := snapshotFor(t, e, "佐藤")
	if snap.BaseSeconds != DefaultBaseSeconds {
		t.Errorf("expected default base seconds, got %d", snap.BaseSeconds)
	}
	if snap.PassLimit != 0 || snap.WrongAnswerLimit != 0 {
		t.Errorf("negative limits should clamp to 0, got passes=%d wrong=%d",
			snap.PassLimit, snap.WrongAnswerLimit)
	}
}

func TestAnswerFlow(t *testing.T) {
	e, rec := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	if err := e.StartGame(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Wrong answer: budget shrinks, turn stays.
	ok, err := e.SubmitAnswer("でたらめ")
	if err != nil || ok {
		t.Fatalf("wrong answer: ok=%v err=%v", ok, err)
	}
	if rec.current != "田中" {
		t.Errorf("wrong answer should not advance the turn, current=%s", rec.current)
	}
	if got := snapshotFor(t, e, "田中").RemainingWrongAnswers; got != 4 {
		t.Errorf("expected 4 wrong answers left, got %d", got)
	}
	if len(rec.sounds) != 1 || rec.sounds[0] != SoundWrong {
		t.Errorf("expected a wrong sound, got %v", rec.sounds)
	}

	// Correct answer: entry consumed, budget restored, turn advances.
	ok, err = e.SubmitAnswer("やまのてせんとうきょう")
	if err != nil || !ok {
		t.Fatalf("correct answer: ok=%v err=%v", ok, err)
	}
	if rec.current != "佐藤" {
		t.Errorf("expected turn to pass to 佐藤, got %s", rec.current)
	}
	if got := snapshotFor(t, e, "田中").RemainingWrongAnswers; got != 5 {
		t.Errorf("correct answer should restore the wrong-answer budget, got %d", got)
	}
	if len(rec.answered) != 1 || rec.answered[0] != "山手線-東京" {
		t.Errorf("unexpected answered list: %v", rec.answered)
	}

	// Next player rides the category: element reading alone suffices.
	ok, err = e.SubmitAnswer("しんじゅく")
	if err != nil || !ok {
		t.Fatalf("short form: ok=%v err=%v", ok, err)
	}
	if len(rec.answered) != 2 || rec.answered[0] != "山手線-新宿" {
		t.Errorf("expected newest answer first, got %v", rec.answered)
	}
	if len(rec.remaining) != 1 || rec.remaining[0] != "大阪環状線-大阪" {
		t.Errorf("unexpected remaining list: %v", rec.remaining)
	}
}

func TestSubmitAnswerRequiresGameState(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.SubmitAnswer("とうきょう"); !errors.Is(err, ErrNoActivePlayer) {
		t.Errorf("expected ErrNoActivePlayer, got %v", err)
	}

	mustAdd(t, e, "田中", 60, 0, 5)
	if _, err := e.SubmitAnswer("とうきょう"); !errors.Is(err, ErrNoCatalog) {
		t.Errorf("expected ErrNoCatalog, got %v", err)
	}
}

func TestCategoryInferenceAfterWrong(t *testing.T) {
	e, _ := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	e.StartGame()

	// 天王寺 is not in the catalog, but the attempt names the 大阪環状線
	// category, so the next short-form answer rides on it.
	if ok, _ := e.SubmitAnswer("おおさかかんじょうせんてんのうじ"); ok {
		t.Fatal("expected a wrong answer")
	}
	ok, err := e.SubmitAnswer("おおさか")
	if err != nil || !ok {
		t.Fatalf("short form after inference: ok=%v err=%v", ok, err)
	}
}

func TestParentheticalAnswer(t *testing.T) {
	e, rec := newTestEngine(t)
	e.LoadCatalog([][]string{
		{"兵庫", "ひょうご", "相生", "あいおい"},
		{"兵庫", "ひょうご", "明石", "あかし"},
	})
	mustAdd(t, e, "田中", 60, 0, 5)
	e.StartGame()

	// The host types the station with its reading in parentheses; only
	// the parenthetical is matched.
	ok, err := e.SubmitAnswer("相生（ひょうごあいおい）")
	if err != nil || !ok {
		t.Fatalf("parenthetical answer: ok=%v err=%v", ok, err)
	}
	if len(rec.answered) != 1 || rec.answered[0] != "兵庫-相生" {
		t.Errorf("unexpected answered list: %v", rec.answered)
	}

	if ok, _ := e.SubmitAnswer("明石 (ひょうごあかし)"); !ok {
		t.Error("ASCII parentheses should work the same way")
	}
}

func TestExtractAnswer(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"兵庫（あいおい）", "あいおい"},
		{"Hyogo (Aioi)", "Aioi"},
		{"a（b）c（d）", "d"},     // rightmost pair wins
		{"（あ）(b)", "あ"},       // full-width pair takes precedence
		{"）あ（", "）あ（"},        // reversed pair left untouched
		{")a(", ")a("},
		{"とうきょう", "とうきょう"},
	}
	for _, tc := range cases {
		if got := extractAnswer(tc.in); got != tc.want {
			t.Errorf("extractAnswer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWrongAnswerElimination(t *testing.T) {
	e, rec := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 1)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	e.StartGame()

	// First wrong answer spends the budget.
	e.SubmitAnswer("はずれ")
	if snapshotFor(t, e, "田中").Eliminated {
		t.Fatal("one wrong answer should not eliminate yet")
	}
	// Second one exceeds it.
	e.SubmitAnswer("またはずれ")
	if !snapshotFor(t, e, "田中").Eliminated {
		t.Fatal("expected elimination at the wrong-answer limit")
	}
	if rec.current != "佐藤" {
		t.Errorf("expected turn to pass to 佐藤, got %s", rec.current)
	}
	if !e.Running() {
		t.Error("game should continue with a player left")
	}
}

func TestTickChargesActivePlayer(t *testing.T) {
	e, _ := newTestEngine(t)
	advance := fakeClock(e)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	e.StartGame()

	advance(15 * time.Second)
	e.Tick()
	if got := snapshotFor(t, e, "田中").RemainingMillis; got != 45000 {
		t.Errorf("expected 45000ms left, got %d", got)
	}

	advance(15 * time.Second)
	e.Tick()
	if got := snapshotFor(t, e, "田中").RemainingMillis; got != 30000 {
		t.Errorf("expected 30000ms left, got %d", got)
	}
}

func TestResetClockSkipsElapsed(t *testing.T) {
	e, _ := newTestEngine(t)
	advance := fakeClock(e)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	e.StartGame()

	// Time spent before the reset is never charged.
	advance(30 * time.Second)
	e.ResetClock()
	advance(10 * time.Second)
	e.Tick()

	if got := snapshotFor(t, e, "田中").RemainingMillis; got != 50000 {
		t.Errorf("expected 50000ms left, got %d", got)
	}
}

func TestTimeoutEliminates(t *testing.T) {
	e, rec := newTestEngine(t)
	advance := fakeClock(e)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	e.StartGame()

	advance(61 * time.Second)
	e.Tick()

	snap := snapshotFor(t, e, "田中")
	if !snap.Eliminated {
		t.Fatal("expected timeout elimination")
	}
	if snap.RemainingMillis != 0 {
		t.Errorf("expected clock floored at 0, got %d", snap.RemainingMillis)
	}
	if rec.current != "佐藤" {
		t.Errorf("expected 佐藤 active, got %s", rec.current)
	}
	if got := snapshotFor(t, e, "佐藤").RemainingMillis; got != 60000 {
		t.Errorf("next player should start with a full clock, got %d", got)
	}
	if !e.Running() {
		t.Error("game should continue with a player left")
	}
}

func TestLastEliminationStopsGame(t *testing.T) {
	e, rec := newTestEngine(t)
	advance := fakeClock(e)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 30, 0, 5)
	e.StartGame()

	advance(31 * time.Second)
	e.Tick()

	if e.Running() {
		t.Fatal("expected the game to stop with everyone eliminated")
	}
	if len(rec.ended) != 1 || rec.ended[0] != "stopped" {
		t.Errorf("unexpected game-ended events: %v", rec.ended)
	}
	if rec.running {
		t.Error("running state should report false")
	}
}

func TestCatalogExhaustionStopsGame(t *testing.T) {
	e, rec := newTestEngine(t)
	e.LoadCatalog([][]string{{"山手線", "やまのてせん", "東京", "とうきょう"}})
	mustAdd(t, e, "田中", 60, 0, 5)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	e.StartGame()

	ok, err := e.SubmitAnswer("やまのてせんとうきょう")
	if err != nil || !ok {
		t.Fatalf("answer: ok=%v err=%v", ok, err)
	}
	if e.Running() {
		t.Fatal("expected the game to stop with the catalog exhausted")
	}
	if len(rec.ended) != 1 {
		t.Errorf("expected one game-ended event, got %v", rec.ended)
	}
}

func TestPass(t *testing.T) {
	e, rec := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 1, 5)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	e.StartGame()

	used, err := e.Pass()
	if err != nil || !used {
		t.Fatalf("pass: used=%v err=%v", used, err)
	}
	if rec.current != "佐藤" {
		t.Errorf("expected 佐藤 active after pass, got %s", rec.current)
	}

	// 佐藤 has no passes; the refusal is not an error and keeps the turn.
	used, err = e.Pass()
	if err != nil || used {
		t.Fatalf("exhausted pass: used=%v err=%v", used, err)
	}
	if rec.current != "佐藤" {
		t.Errorf("refused pass should keep the turn, got %s", rec.current)
	}
}

func TestForfeit(t *testing.T) {
	e, rec := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	mustAdd(t, e, "鈴木", 60, 0, 5)
	e.StartGame()

	// Forfeiting a waiting player does not move the turn.
	if err := e.Forfeit("佐藤"); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if !snapshotFor(t, e, "佐藤").Eliminated {
		t.Fatal("expected 佐藤 eliminated")
	}
	if rec.current != "田中" {
		t.Errorf("forfeit of a waiting player moved the turn to %s", rec.current)
	}

	// Forfeiting the active player advances past eliminated seats.
	if err := e.Forfeit("田中"); err != nil {
		t.Fatalf("forfeit active: %v", err)
	}
	if rec.current != "鈴木" {
		t.Errorf("expected 鈴木 active, got %s", rec.current)
	}

	// Already eliminated: a quiet no-op.
	if err := e.Forfeit("佐藤"); err != nil {
		t.Errorf("repeat forfeit should be a no-op, got %v", err)
	}
	if err := e.Forfeit("山本"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestSkip(t *testing.T) {
	e, rec := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	e.StartGame()

	if err := e.Skip("佐藤"); !errors.Is(err, ErrNotCurrentPlayer) {
		t.Fatalf("expected ErrNotCurrentPlayer, got %v", err)
	}
	if err := e.Skip("田中"); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if rec.current != "佐藤" {
		t.Errorf("expected 佐藤 active after skip, got %s", rec.current)
	}
	if got := snapshotFor(t, e, "田中").RemainingPasses; got != 0 {
		t.Errorf("skip should not spend a pass, got %d", got)
	}
}

func TestUnmarkAnswer(t *testing.T) {
	e, rec := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	e.StartGame()
	e.SubmitAnswer("やまのてせんとうきょう")

	if !e.UnmarkAnswer("山手線-東京") {
		t.Fatal("unmark should succeed")
	}
	if len(rec.answered) != 0 {
		t.Errorf("chronology should drop the entry, got %v", rec.answered)
	}
	if len(rec.remaining) != 3 {
		t.Errorf("entry should be pending again, got %v", rec.remaining)
	}
	if e.UnmarkAnswer("山手線-東京") {
		t.Error("second unmark should report no change")
	}
}

func TestReorderPlayers(t *testing.T) {
	e, _ := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	mustAdd(t, e, "鈴木", 60, 0, 5)

	// Unnamed players keep their relative order at the tail.
	if err := e.ReorderPlayers([]string{"鈴木", "田中"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	want := []string{"鈴木", "田中", "佐藤"}
	for i, p := range e.Players() {
		if p.Name != want[i] {
			t.Fatalf("expected order %v, got position %d = %s", want, i, p.Name)
		}
	}

	e.StartGame()
	if err := e.ReorderPlayers([]string{"佐藤"}); !errors.Is(err, ErrGameRunning) {
		t.Errorf("expected ErrGameRunning, got %v", err)
	}
}

func TestMovePlayer(t *testing.T) {
	e, _ := newTestEngine(t)
	mustAdd(t, e, "田中", 60, 0, 5)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	mustAdd(t, e, "鈴木", 60, 0, 5)

	if err := e.MovePlayer("鈴木", 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	want := []string{"鈴木", "田中", "佐藤"}
	for i, p := range e.Players() {
		if p.Name != want[i] {
			t.Fatalf("expected order %v, got position %d = %s", want, i, p.Name)
		}
	}

	if err := e.MovePlayer("山本", 0); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}

	e.LoadCatalog(lineRows())
	e.StartGame()
	if err := e.MovePlayer("田中", 0); !errors.Is(err, ErrGameRunning) {
		t.Errorf("expected ErrGameRunning, got %v", err)
	}
}

func TestRemovePlayerMidGame(t *testing.T) {
	e, rec := newTestEngine(t)
	advance := fakeClock(e)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	mustAdd(t, e, "佐藤", 60, 0, 5)
	e.StartGame()

	if err := e.RemovePlayer("田中"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if rec.current != "佐藤" {
		t.Errorf("expected 佐藤 active after removal, got %s", rec.current)
	}

	// The next tick hands 佐藤 a fresh clock instead of charging the
	// removed player's leftovers.
	advance(5 * time.Second)
	e.Tick()
	if got := snapshotFor(t, e, "佐藤").RemainingMillis; got != 55000 {
		t.Errorf("expected 55000ms left, got %d", got)
	}

	if err := e.RemovePlayer("山本"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestStopGameIdempotent(t *testing.T) {
	e, rec := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	e.StartGame()

	e.StopGame()
	e.StopGame()
	if len(rec.ended) != 2 {
		t.Errorf("expected a game-ended event per stop, got %v", rec.ended)
	}
	if e.Running() {
		t.Error("expected idle state")
	}
}

func TestRestartKeepsCatalogProgress(t *testing.T) {
	e, _ := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	e.StartGame()
	e.SubmitAnswer("やまのてせんとうきょう")
	e.StopGame()

	// Players reset on restart; catalog progress survives until a
	// fresh list is loaded.
	if err := e.StartGame(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := len(e.Remaining()); got != 2 {
		t.Errorf("expected 2 remaining after restart, got %d", got)
	}
	if got := snapshotFor(t, e, "田中").RemainingWrongAnswers; got != 5 {
		t.Errorf("expected budgets reset on restart, got %d", got)
	}
}

func TestPlayerHistory(t *testing.T) {
	e, _ := newTestEngine(t)
	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	e.StartGame()
	e.SubmitAnswer("はずれ")
	e.SubmitAnswer("やまのてせんとうきょう")

	correct, wrong, err := e.PlayerHistory("田中")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(correct) != 1 || correct[0].Text != "やまのてせんとうきょう" {
		t.Errorf("unexpected correct history: %v", correct)
	}
	if len(wrong) != 1 || wrong[0].Text != "はずれ" {
		t.Errorf("unexpected wrong history: %v", wrong)
	}

	if _, _, err := e.PlayerHistory("山本"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestSaveRows(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.SaveRows(); !errors.Is(err, ErrNoCatalog) {
		t.Fatalf("expected ErrNoCatalog, got %v", err)
	}

	e.LoadCatalog(lineRows())
	mustAdd(t, e, "田中", 60, 0, 5)
	e.StartGame()
	e.SubmitAnswer("やまのてせんとうきょう")

	rows, err := e.SaveRows()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	// Two pending rows, the separator, one answered row.
	if len(rows) != 4 {
		t.Fatalf("expected 4 records, got %d: %v", len(rows), rows)
	}
	if len(rows[2]) != 0 {
		t.Errorf("expected a blank separator record, got %v", rows[2])
	}
}
