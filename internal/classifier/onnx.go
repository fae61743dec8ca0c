package classifier

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// Head output names in the exported model, in the order Heads returns them.
var outputNames = []string{"defect_type", "severity", "location"}

// ONNX runs the multi-head model through an ONNX Runtime session. One
// session serves the whole process; Run calls are serialized by mu because
// the tensors are reused per call.
type ONNX struct {
	mu       sync.Mutex
	session  *ort.DynamicAdvancedSession
	headDims [3]int64
}

// NewONNX loads the model and creates an inference session. headSizes are
// the expected lengths of the defect, severity, and location heads; the
// model's declared outputs are validated against them at construction.
// libraryPath may be empty, in which case the runtime library is expected
// next to the model file.
func NewONNX(modelPath, libraryPath string, headSizes [3]int) (*ONNX, error) {
	if libraryPath == "" {
		libraryPath = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	}
	if err := initORT(libraryPath); err != nil {
		return nil, eris.Wrap(err, "classifier: initialize onnx runtime")
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, eris.Wrapf(err, "classifier: read model info %s", modelPath)
	}
	if len(inputs) != 1 {
		return nil, eris.Errorf("classifier: model has %d inputs, want 1", len(inputs))
	}

	byName := make(map[string]ort.InputOutputInfo, len(outputs))
	for _, out := range outputs {
		byName[out.Name] = out
	}
	var headDims [3]int64
	for i, name := range outputNames {
		info, ok := byName[name]
		if !ok {
			return nil, eris.Errorf("classifier: model missing output %q", name)
		}
		dims := info.Dimensions
		if len(dims) != 2 {
			return nil, eris.Errorf("classifier: output %q has %d dims, want 2", name, len(dims))
		}
		if dims[1] != int64(headSizes[i]) {
			return nil, eris.Errorf("classifier: output %q has %d classes, want %d", name, dims[1], headSizes[i])
		}
		headDims[i] = dims[1]
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, eris.Wrap(err, "classifier: create session options")
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		outputNames,
		opts,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "classifier: create session %s", modelPath)
	}

	return &ONNX{session: session, headDims: headDims}, nil
}

// Heads preprocesses the image and runs one inference, returning the three
// raw logit heads.
func (o *ONNX) Heads(ctx context.Context, imagePath string) (Logits, error) {
	if err := ctx.Err(); err != nil {
		return Logits{}, eris.Wrap(err, "classifier: context")
	}

	data, err := preprocess(imagePath)
	if err != nil {
		return Logits{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	input, err := ort.NewTensor(ort.NewShape(1, 3, inputSide, inputSide), data)
	if err != nil {
		return Logits{}, eris.Wrap(err, "classifier: create input tensor")
	}
	defer input.Destroy()

	outs := make([]ort.Value, len(outputNames))
	tensors := make([]*ort.Tensor[float32], len(outputNames))
	for i := range outputNames {
		t, err := ort.NewEmptyTensor[float32](ort.NewShape(1, o.headDims[i]))
		if err != nil {
			return Logits{}, eris.Wrapf(err, "classifier: create %s tensor", outputNames[i])
		}
		defer t.Destroy()
		tensors[i] = t
		outs[i] = t
	}

	if err := o.session.Run([]ort.Value{input}, outs); err != nil {
		return Logits{}, eris.Wrapf(err, "classifier: inference %s", imagePath)
	}

	return Logits{
		Defect:   copyFloats(tensors[0].GetData()),
		Severity: copyFloats(tensors[1].GetData()),
		Location: copyFloats(tensors[2].GetData()),
	}, nil
}

// Close releases the inference session.
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		o.session.Destroy()
		o.session = nil
	}
	return nil
}

// copyFloats detaches tensor-backed data before the tensor is destroyed.
func copyFloats(src []float32) []float32 {
	out := make([]float32, len(src))
	copy(out, src)
	return out
}
