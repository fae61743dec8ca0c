package store

import (
	"path/filepath"
	"time"

	"github.com/visionqc/inspect-cli/internal/model"
)

// prepareRecord fills the storage-derived fields of a record before a
// write: content digest, file name, default timestamp, and the label
// coercion of unknown labels to the set's default entry.
func prepareRecord(rec model.Record, labels *model.LabelSet) (model.Record, error) {
	digest, err := FileDigest(rec.Path)
	if err != nil {
		return model.Record{}, err
	}
	rec.Digest = digest
	rec.FileName = filepath.Base(rec.Path)
	if rec.TS == "" {
		rec.TS = model.Now(time.Now())
	}
	if labels != nil {
		rec.Label = labels.Coerce(rec.Label)
	}
	return rec, nil
}
