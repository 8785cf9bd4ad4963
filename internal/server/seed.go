package server

import (
	"context"
	"log/slog"
)

// sampleListName is the name of the list seeded on first run.
const sampleListName = "サンプル：山手線"

const sampleListCSV = "山手線,やまのてせん,東京,とうきょう\n" +
	"山手線,やまのてせん,神田,かんだ\n" +
	"山手線,やまのてせん,秋葉原,あきはばら\n" +
	"山手線,やまのてせん,上野,うえの\n" +
	"山手線,やまのてせん,池袋,いけぶくろ\n" +
	"山手線,やまのてせん,新宿,しんじゅく\n" +
	"山手線,やまのてせん,渋谷,しぶや\n" +
	"山手線,やまのてせん,品川,しながわ\n"

// SeedSampleList stores a small built-in answer list if the library is
// empty, so a first-time host can try the flow without preparing a CSV.
// Idempotent: does nothing once any list exists.
func SeedSampleList(ctx context.Context, logger *slog.Logger, store Store) error {
	existing, err := store.ListAnswerLists(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	if _, err := store.SaveAnswerList(ctx, sampleListName, []byte(sampleListCSV)); err != nil {
		return err
	}
	logger.Info("sample answer list seeded", "name", sampleListName)
	return nil
}
