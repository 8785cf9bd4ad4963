package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestSeedSampleList(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := SeedSampleList(ctx, logger, store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	lists, err := store.ListAnswerLists(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lists) != 1 || lists[0].Name != sampleListName {
		t.Fatalf("expected the sample list, got %+v", lists)
	}

	// Running again must not duplicate or overwrite.
	if err := SeedSampleList(ctx, logger, store); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	lists, _ = store.ListAnswerLists(ctx)
	if len(lists) != 1 {
		t.Errorf("expected 1 list after reseed, got %d", len(lists))
	}
}

func TestSeedSkipsNonEmptyLibrary(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := store.SaveAnswerList(ctx, "mine", []byte("a,b,c,d\n")); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := SeedSampleList(ctx, logger, store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	lists, _ := store.ListAnswerLists(ctx)
	if len(lists) != 1 || lists[0].Name != "mine" {
		t.Errorf("seed should not touch a non-empty library, got %+v", lists)
	}
}
