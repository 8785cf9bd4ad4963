package server

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// AnswerListSummary is a library entry without its content.
type AnswerListSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	UpdatedAt string `json:"updatedAt"`
}

// AnswerListDetail is a library entry including the raw CSV content.
type AnswerListDetail struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updatedAt"`
}

// Store persists everything that outlives a session: the answer-list
// library and host login sessions. Game state itself is deliberately
// not stored; a server restart starts from a clean console.
type Store interface {
	CreateHostSession(ctx context.Context) (sessionID string, err error)
	HostSessionExists(ctx context.Context, sessionID string) (bool, error)
	DeleteHostSession(ctx context.Context, sessionID string) error

	ListAnswerLists(ctx context.Context) ([]AnswerListSummary, error)
	SaveAnswerList(ctx context.Context, name string, content []byte) (AnswerListSummary, error)
	GetAnswerList(ctx context.Context, id string) (AnswerListDetail, error)
	UpdateAnswerListContent(ctx context.Context, id string, content []byte) error
	DeleteAnswerList(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}
