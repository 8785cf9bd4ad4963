package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kotobaplay/wordrelay/internal/relay"
)

// typingHold is how long one typing ping keeps the countdown parked.
// The host console re-pings while keystrokes continue.
const typingHold = time.Second

// Console serializes host operations onto the turn engine and bridges
// its hooks into structured logs and the event broker. Every HTTP
// handler and the tick loop go through the console, so the engine
// itself never needs locking.
type Console struct {
	logger *slog.Logger
	broker *Broker

	mu           sync.Mutex
	engine       *relay.Engine
	holdUntil    time.Time
	activeListID string
}

type notificationEvent struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type gameEndedEvent struct {
	Reason string `json:"reason"`
}

type answersEvent struct {
	Remaining []string `json:"remaining"`
	Answered  []string `json:"answered"`
}

type soundEvent struct {
	Kind string `json:"kind"`
}

type currentPlayerEvent struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

type runningEvent struct {
	Running bool `json:"running"`
}

// StateSnapshot is the full console state as one document, served to
// clients that connect mid-game before their event stream begins.
type StateSnapshot struct {
	Running       bool                   `json:"running"`
	CurrentPlayer string                 `json:"currentPlayer,omitempty"`
	Players       []relay.PlayerSnapshot `json:"players"`
	Remaining     []string               `json:"remaining"`
	Answered      []string               `json:"answered"`
	CatalogSize   int                    `json:"catalogSize"`
	HasCatalog    bool                   `json:"hasCatalog"`
	ActiveListID  string                 `json:"activeListId,omitempty"`
}

func NewConsole(logger *slog.Logger) *Console {
	c := &Console{
		logger: logger,
		broker: NewBroker(),
	}
	c.engine = relay.New(relay.Hooks{
		Notification: func(level relay.Level, message string) {
			switch level {
			case relay.LevelDebug:
				logger.Debug("game event", "message", message)
			case relay.LevelError:
				logger.Warn("game operation rejected", "message", message)
			default:
				logger.Info("game event", "message", message)
			}
			c.broker.Publish(Event{Type: "notification", Data: notificationEvent{
				Level:   string(level),
				Message: message,
			}})
		},
		PlayerAdded: func(p relay.PlayerSnapshot) {
			c.broker.Publish(Event{Type: "player_added", Data: p})
		},
		PlayerState: func(p relay.PlayerSnapshot) {
			c.broker.Publish(Event{Type: "player_state", Data: p})
		},
		GameEnded: func(reason string) {
			c.broker.Publish(Event{Type: "game_ended", Data: gameEndedEvent{Reason: reason}})
		},
		CatalogLoaded: func(meta relay.CatalogMeta) {
			c.broker.Publish(Event{Type: "catalog_loaded", Data: meta})
		},
		AnswersUpdated: func(remaining, answered []string) {
			c.broker.Publish(Event{Type: "answers_updated", Data: answersEvent{
				Remaining: remaining,
				Answered:  answered,
			}})
		},
		Sound: func(kind relay.SoundKind) {
			c.broker.Publish(Event{Type: "sound", Data: soundEvent{Kind: string(kind)}})
		},
		AllPlayers: func(players []relay.PlayerSnapshot) {
			c.broker.Publish(Event{Type: "players", Data: players})
		},
		CurrentPlayer: func(name string, ok bool) {
			c.broker.Publish(Event{Type: "current_player", Data: currentPlayerEvent{
				Name:    name,
				Present: ok,
			}})
		},
		RunningState: func(running bool) {
			c.broker.Publish(Event{Type: "running", Data: runningEvent{Running: running}})
		},
	})
	return c
}

// Subscribe returns a channel of JSON-encoded game events.
func (c *Console) Subscribe() chan []byte { return c.broker.Subscribe() }

// Unsubscribe releases a subscription channel.
func (c *Console) Unsubscribe(ch chan []byte) { c.broker.Unsubscribe(ch) }

// RunTicker drives the countdown until ctx is canceled. While a typing
// hold is active the elapsed-time reference is re-armed instead of
// charged, so time spent typing never counts against the player.
func (c *Console) RunTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if time.Now().Before(c.holdUntil) {
				c.engine.ResetClock()
			} else {
				c.engine.Tick()
			}
			c.mu.Unlock()
		}
	}
}

// HoldClock parks the countdown for one typing-hold window.
func (c *Console) HoldClock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holdUntil = time.Now().Add(typingHold)
	c.engine.ResetClock()
}

// LoadCatalog replaces the working catalog. listID associates the
// catalog with a stored answer list so the host can save progress back
// to it; pass "" for an ad-hoc upload.
func (c *Console) LoadCatalog(rows [][]string, listID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeListID = listID
	c.engine.LoadCatalog(rows)
}

// ActiveList is the id of the stored list the catalog came from, or "".
func (c *Console) ActiveList() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeListID
}

// SaveRows exports the catalog's current state together with the
// active list id, read under one lock so they cannot drift apart.
func (c *Console) SaveRows() ([][]string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, err := c.engine.SaveRows()
	return rows, c.activeListID, err
}

func (c *Console) AddPlayer(name string, baseSeconds, passLimit, wrongLimit int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.AddPlayer(name, baseSeconds, passLimit, wrongLimit)
}

func (c *Console) RemovePlayer(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.RemovePlayer(name)
}

func (c *Console) ReorderPlayers(names []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.ReorderPlayers(names)
}

func (c *Console) MovePlayer(name string, targetIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.MovePlayer(name, targetIndex)
}

func (c *Console) Forfeit(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Forfeit(name)
}

func (c *Console) Skip(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Skip(name)
}

func (c *Console) PlayerHistory(name string) (correct, wrong []relay.AnswerRecord, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.PlayerHistory(name)
}

func (c *Console) StartGame() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holdUntil = time.Time{}
	return c.engine.StartGame()
}

func (c *Console) StopGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.StopGame()
}

// SubmitAnswer adjudicates text for the active player. Submitting ends
// any typing hold; the countdown resumes from now.
func (c *Console) SubmitAnswer(text string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holdUntil = time.Time{}
	c.engine.ResetClock()
	return c.engine.SubmitAnswer(text)
}

func (c *Console) Pass() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holdUntil = time.Time{}
	return c.engine.Pass()
}

func (c *Console) UnmarkAnswer(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.UnmarkAnswer(key)
}

// State snapshots the console for clients joining mid-game.
func (c *Console) State() StateSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := StateSnapshot{
		Running:      c.engine.Running(),
		Players:      c.engine.Players(),
		Remaining:    c.engine.Remaining(),
		Answered:     c.engine.Answered(),
		CatalogSize:  c.engine.CatalogSize(),
		HasCatalog:   c.engine.HasCatalog(),
		ActiveListID: c.activeListID,
	}
	if name, ok := c.engine.CurrentPlayer(); ok {
		snap.CurrentPlayer = name
	}
	if snap.Remaining == nil {
		snap.Remaining = []string{}
	}
	if snap.Answered == nil {
		snap.Answered = []string{}
	}
	return snap
}
