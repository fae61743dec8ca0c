package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/visionqc/inspect-cli/internal/classifier"
	"github.com/visionqc/inspect-cli/internal/decision"
	"github.com/visionqc/inspect-cli/internal/model"
	"github.com/visionqc/inspect-cli/internal/store"
)

func labelSet() *model.LabelSet {
	return model.NewLabelSet(cfg.Labels.External)
}

// initStore opens the configured store backend and ensures the schema.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, labelSet())
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.Path, labelSet())
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.EnsureReady(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func initEngine() (*decision.Engine, error) {
	return decision.New(labelSet(), cfg.Decision.Threshold)
}

func initClassifier() (classifier.Classifier, error) {
	return classifier.NewONNX(
		cfg.Classifier.ModelPath,
		cfg.Classifier.LibraryPath,
		[3]int{len(decision.InternalDefectLabels), len(model.Tiers), len(model.Zones)},
	)
}
