package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// LoadCSV reads a Kaggle-style classification CSV with a header row and
// records of the form label,pixel0,pixel1,...: integer label first, then
// one integer pixel value (0-255) per feature. Pixels come back
// normalized to [0, 1]. maxExamples of 0 loads everything.
func LoadCSV(path string, numClasses, maxExamples int) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data: failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("data: CSV file is empty or missing header")
	}
	records = records[1:]
	if maxExamples > 0 && len(records) > maxExamples {
		records = records[:maxExamples]
	}

	numFeatures := len(records[0]) - 1
	if numFeatures < 1 {
		return nil, fmt.Errorf("data: header implies %d features", numFeatures)
	}

	features := make([]float32, len(records)*numFeatures)
	labels := make([]int32, len(records))
	for i, record := range records {
		if len(record) != numFeatures+1 {
			return nil, fmt.Errorf("data: invalid record length at row %d: got %d, want %d",
				i+1, len(record), numFeatures+1)
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("data: invalid label at row %d: %w", i+1, err)
		}
		if label < 0 || label >= numClasses {
			return nil, fmt.Errorf("data: label %d out of range [0, %d) at row %d", label, numClasses, i+1)
		}
		labels[i] = int32(label)

		row := features[i*numFeatures:]
		for j := 0; j < numFeatures; j++ {
			pixel, err := strconv.Atoi(record[j+1])
			if err != nil {
				return nil, fmt.Errorf("data: invalid pixel at row %d, column %d: %w", i+1, j+1, err)
			}
			row[j] = float32(pixel) / 255.0
		}
	}

	return &Dataset{Features: features, Labels: labels, NumFeatures: numFeatures}, nil
}
