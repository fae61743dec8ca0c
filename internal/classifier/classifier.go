// Package classifier is the boundary to the trained multi-head model: an
// image in, three logit vectors out. Softmax and arg-max stay with the
// decision engine.
package classifier

import "context"

// Logits carries the three raw output heads of the model for one image.
type Logits struct {
	Defect   []float32
	Severity []float32
	Location []float32
}

// Classifier produces multi-head logits for an image file.
type Classifier interface {
	Heads(ctx context.Context, imagePath string) (Logits, error)
	Close() error
}

// Static is a deterministic Classifier returning fixed logits, used by
// pipeline and command tests.
type Static struct {
	Out Logits
	Err error
}

func (s *Static) Heads(ctx context.Context, imagePath string) (Logits, error) {
	if s.Err != nil {
		return Logits{}, s.Err
	}
	return s.Out, nil
}

func (s *Static) Close() error { return nil }
