package classifier

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// inputSide is the fixed square resolution the model was trained on.
const inputSide = 224

// Per-channel normalization constants (ImageNet), matching training.
var (
	chanMean = [3]float32{0.485, 0.456, 0.406}
	chanStd  = [3]float32{0.229, 0.224, 0.225}
)

// preprocess decodes the image at path, resizes it to the model's square
// input resolution, and returns a CHW float32 tensor normalized with the
// fixed per-channel mean and standard deviation.
func preprocess(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classifier: open %s", path)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "classifier: decode %s", path)
	}

	dst := image.NewRGBA(image.Rect(0, 0, inputSide, inputSide))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	data := make([]float32, 3*inputSide*inputSide)
	plane := inputSide * inputSide
	for y := 0; y < inputSide; y++ {
		for x := 0; x < inputSide; x++ {
			off := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				v := float32(dst.Pix[off+c]) / 255.0
				data[c*plane+y*inputSide+x] = (v - chanMean[c]) / chanStd[c]
			}
		}
	}
	return data, nil
}
