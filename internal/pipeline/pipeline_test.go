package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionqc/inspect-cli/internal/classifier"
	"github.com/visionqc/inspect-cli/internal/decision"
	"github.com/visionqc/inspect-cli/internal/model"
	"github.com/visionqc/inspect-cli/internal/store"
)

// fakeClassifier returns fixed logits and can be told to fail for
// specific file names.
type fakeClassifier struct {
	out    classifier.Logits
	failOn map[string]bool
}

func (f *fakeClassifier) Heads(_ context.Context, imagePath string) (classifier.Logits, error) {
	if f.failOn[filepath.Base(imagePath)] {
		return classifier.Logits{}, eris.Errorf("decode %s", imagePath)
	}
	return f.out, nil
}

func (f *fakeClassifier) Close() error { return nil }

// dentLogits is a decisive moderate front dent.
var dentLogits = classifier.Logits{
	Defect:   []float32{5, 0, 0, 0, 0, 0},
	Severity: []float32{0, 5, 0},
	Location: []float32{5, 0, 0},
}

func newScanner(t *testing.T, cls classifier.Classifier) (*Scanner, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.EnsureReady(context.Background()))

	engine, err := decision.New(model.NewLabelSet(nil), 0.25)
	require.NoError(t, err)

	return &Scanner{Classifier: cls, Engine: engine, Store: st}, st
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestScanDir_Counts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", "content a")
	writeFile(t, dir, "b.png", "content b")
	writeFile(t, dir, "dup.jpeg", "content a") // same bytes as a.jpg
	writeFile(t, dir, "bad.jpg", "corrupt")
	writeFile(t, dir, "notes.txt", "not an image")

	cls := &fakeClassifier{out: dentLogits, failOn: map[string]bool{"bad.jpg": true}}
	scanner, st := newScanner(t, cls)

	rep, err := scanner.ScanDir(context.Background(), dir)
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 4, rep.Scanned) // notes.txt skipped
	assert.Equal(t, 2, rep.Added)
	assert.Equal(t, 1, rep.Duplicates)
	assert.Equal(t, 1, rep.Failed)

	recs, err := st.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, "dent", rec.Label)
		assert.Equal(t, model.TierB, rec.Tier)
		assert.Equal(t, model.ZoneFront, rec.Zone)
		assert.Equal(t, model.ActionRework, rec.Action)
		assert.NotEmpty(t, rec.Detail)
	}
}

func TestScanDir_NoFindingNeutralized(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.jpg", "clean content")

	// Uniform logits: winning probability 1/6, below the threshold.
	cls := &fakeClassifier{out: classifier.Logits{
		Defect:   []float32{1, 1, 1, 1, 1, 1},
		Severity: []float32{0, 0, 5},
		Location: []float32{0, 5, 0},
	}}
	scanner, st := newScanner(t, cls)

	rep, err := scanner.ScanDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Added)

	recs, err := st.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.NoDefectLabel, recs[0].Label)
	assert.Equal(t, model.TierC, recs[0].Tier)
	assert.Equal(t, model.ZoneNone, recs[0].Zone)
	assert.Equal(t, model.ActionPass, recs[0].Action)
	// Raw winning probability survives the abstention.
	assert.InDelta(t, 1.0/6.0, recs[0].Score, 1e-6)
}

func TestScanDir_CancelledBetweenItems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", "content a")

	scanner, _ := newScanner(t, &fakeClassifier{out: dentLogits})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanner.ScanDir(ctx, dir)
	assert.Error(t, err)
}

func TestScanDir_MissingDir(t *testing.T) {
	scanner, _ := newScanner(t, &fakeClassifier{out: dentLogits})

	_, err := scanner.ScanDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
