package data

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Dataset holds a flat feature matrix with one row per example and the
// matching integer labels. Pixel features are normalized to [0, 1].
type Dataset struct {
	Features    []float32
	Labels      []int32
	NumFeatures int
}

// NumExamples returns the number of examples in the dataset.
func (d *Dataset) NumExamples() int {
	if d.NumFeatures == 0 {
		return 0
	}
	return len(d.Features) / d.NumFeatures
}

// Split divides the dataset at the given fraction, returning the leading
// part and the remainder. Shuffle at the loader, not here.
func (d *Dataset) Split(ratio float64) (*Dataset, *Dataset, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("data: split ratio %g outside (0, 1)", ratio)
	}
	cut := int(float64(d.NumExamples()) * ratio)
	if cut == 0 || cut == d.NumExamples() {
		return nil, nil, fmt.Errorf("data: split ratio %g leaves an empty part for %d examples",
			ratio, d.NumExamples())
	}
	return &Dataset{
			Features:    d.Features[:cut*d.NumFeatures],
			Labels:      d.Labels[:cut],
			NumFeatures: d.NumFeatures,
		}, &Dataset{
			Features:    d.Features[cut*d.NumFeatures:],
			Labels:      d.Labels[cut:],
			NumFeatures: d.NumFeatures,
		}, nil
}

// LoadIDX reads a dataset from a pair of MNIST-style IDX files in dataDir.
// With train set, it reads the 60k training pair, otherwise the 10k test
// pair. Files may optionally be gzip-compressed with a .gz suffix.
func LoadIDX(dataDir string, train bool) (*Dataset, error) {
	imageFile := "t10k-images-idx3-ubyte"
	labelFile := "t10k-labels-idx1-ubyte"
	if train {
		imageFile = "train-images-idx3-ubyte"
		labelFile = "train-labels-idx1-ubyte"
	}

	features, numFeatures, err := readIDXImages(resolveIDXPath(dataDir, imageFile))
	if err != nil {
		return nil, fmt.Errorf("data: loading images: %w", err)
	}
	labels, err := readIDXLabels(resolveIDXPath(dataDir, labelFile))
	if err != nil {
		return nil, fmt.Errorf("data: loading labels: %w", err)
	}
	if len(features)/numFeatures != len(labels) {
		return nil, fmt.Errorf("data: %d images but %d labels", len(features)/numFeatures, len(labels))
	}
	return &Dataset{Features: features, Labels: labels, NumFeatures: numFeatures}, nil
}

func resolveIDXPath(dataDir, name string) string {
	plain := filepath.Join(dataDir, name)
	if _, err := os.Stat(plain); err == nil {
		return plain
	}
	return plain + ".gz"
}

func openIDX(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return file, nil
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &gzipFile{gz: gz, file: file}, nil
}

type gzipFile struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipFile) Close() error {
	gzErr := g.gz.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}

// readIDXImages reads an IDX image file: magic 2051, then image count,
// rows, and cols as big-endian uint32, then one unsigned byte per pixel.
// Pixels come back normalized to [0, 1].
func readIDXImages(path string) ([]float32, int, error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, 0, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != 2051 {
		return nil, 0, fmt.Errorf("invalid magic number: got %d, want 2051", magic)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(r, binary.BigEndian, &numImages); err != nil {
		return nil, 0, err
	}
	if err := binary.Read(r, binary.BigEndian, &numRows); err != nil {
		return nil, 0, err
	}
	if err := binary.Read(r, binary.BigEndian, &numCols); err != nil {
		return nil, 0, err
	}

	imageSize := int(numRows * numCols)
	raw := make([]byte, imageSize)
	features := make([]float32, int(numImages)*imageSize)
	for i := 0; i < int(numImages); i++ {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, 0, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		row := features[i*imageSize:]
		for j, b := range raw {
			row[j] = float32(b) / 255.0
		}
	}
	return features, imageSize, nil
}

// readIDXLabels reads an IDX label file: magic 2049, then label count as
// big-endian uint32, then one unsigned byte per label.
func readIDXLabels(path string) ([]int32, error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != 2049 {
		return nil, fmt.Errorf("invalid magic number: got %d, want 2049", magic)
	}

	var numLabels uint32
	if err := binary.Read(r, binary.BigEndian, &numLabels); err != nil {
		return nil, err
	}

	raw := make([]byte, numLabels)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	labels := make([]int32, numLabels)
	for i, b := range raw {
		labels[i] = int32(b)
	}
	return labels, nil
}
