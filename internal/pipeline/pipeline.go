// Package pipeline runs batch folder ingestion: classify every image in a
// directory and record the verdicts through the store's conflict-tolerant
// insert path.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/visionqc/inspect-cli/internal/classifier"
	"github.com/visionqc/inspect-cli/internal/decision"
	"github.com/visionqc/inspect-cli/internal/model"
	"github.com/visionqc/inspect-cli/internal/store"
)

// DefaultExtensions are the image file extensions scanned when none are
// configured.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// Scanner ingests a folder of images sequentially: one classifier call and
// one insert per file. Classification is deliberately not parallel; the
// store's unique indices carry the dedup invariant, not the scan order.
type Scanner struct {
	Classifier classifier.Classifier
	Engine     *decision.Engine
	Store      store.Store
	Extensions []string
}

// Report summarizes one batch run.
type Report struct {
	RunID      string `json:"run_id"`
	Scanned    int    `json:"scanned"`
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
	Failed     int    `json:"failed"`
}

// ScanDir classifies every supported image directly under dir and inserts
// the verdicts. Per-item failures are logged and counted so one bad file
// never aborts the batch; the context is checked between items as the only
// cancellation point. The error return covers batch-level failures only
// (unreadable directory, cancellation).
func (s *Scanner) ScanDir(ctx context.Context, dir string) (Report, error) {
	rep := Report{RunID: uuid.New().String()}
	log := zap.L().With(zap.String("run_id", rep.RunID), zap.String("dir", dir))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return rep, eris.Wrapf(err, "pipeline: read dir %s", dir)
	}

	exts := s.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	log.Info("scan started", zap.Int("entries", len(entries)))

	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name(), exts) {
			continue
		}
		// Coarse-grained stop check between files; an in-flight item is
		// never interrupted.
		if err := ctx.Err(); err != nil {
			log.Warn("scan cancelled", zap.Int("scanned", rep.Scanned))
			return rep, eris.Wrap(err, "pipeline: scan cancelled")
		}

		path := filepath.Join(dir, entry.Name())
		rep.Scanned++

		added, err := s.processFile(ctx, path)
		if err != nil {
			rep.Failed++
			log.Error("item failed", zap.String("path", path), zap.Error(err))
			continue
		}
		if added {
			rep.Added++
		} else {
			rep.Duplicates++
		}
	}

	log.Info("scan complete",
		zap.Int("scanned", rep.Scanned),
		zap.Int("added", rep.Added),
		zap.Int("duplicates", rep.Duplicates),
		zap.Int("failed", rep.Failed),
	)
	return rep, nil
}

func (s *Scanner) processFile(ctx context.Context, path string) (bool, error) {
	logits, err := s.Classifier.Heads(ctx, path)
	if err != nil {
		return false, err
	}

	verdict, err := s.Engine.DecideLogits(logits.Defect, logits.Severity, logits.Location)
	if err != nil {
		return false, err
	}
	verdict = verdict.WithNoFindingDefaults()

	return s.Store.Insert(ctx, model.Record{
		Path:   path,
		Label:  verdict.Label,
		Tier:   verdict.Tier,
		Zone:   verdict.Zone,
		Score:  verdict.Confidence,
		Detail: verdict.Description,
		Action: verdict.Action,
	})
}

func supported(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
