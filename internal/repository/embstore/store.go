// Package embstore loads precomputed group embeddings.
//
// Two layouts are read: a JSON object mapping group id to a vector
// ({"123": [0.1, ...]}) and a Parquet file of (group_id, vector) rows.
package embstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
)

// Row is the Parquet layout of the embedding store.
type Row struct {
	GroupID int64     `parquet:"group_id"`
	Vector  []float32 `parquet:"vector"`
}

// Load reads the whole embedding map. Empty vectors and unparseable ids
// are skipped. Mixed dimensionalities are loaded but logged.
func Load(path string, logger *zap.Logger) (map[int64][]float32, error) {
	var (
		m       map[int64][]float32
		skipped int
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		m, skipped, err = loadParquet(path)
	} else {
		m, skipped, err = loadJSON(path)
	}
	if err != nil {
		return nil, err
	}

	dims := Dimensions(m)
	if skipped > 0 {
		logger.Warn("Skipped unusable embeddings", zap.String("path", path), zap.Int("skipped", skipped))
	}
	if len(dims) > 1 {
		logger.Warn("Embeddings have mixed dimensions", zap.String("path", path), zap.Any("dimensions", dims))
	}
	logger.Info("Group embeddings loaded", zap.String("path", path), zap.Int("count", len(m)))
	return m, nil
}

// Dimensions counts vectors per dimensionality.
func Dimensions(m map[int64][]float32) map[int]int {
	dims := make(map[int]int)
	for _, v := range m {
		dims[len(v)]++
	}
	return dims
}

func loadParquet(path string) (map[int64][]float32, int, error) {
	rows, err := parquet.ReadFile[Row](filepath.Clean(path))
	if err != nil {
		return nil, 0, fmt.Errorf("read parquet %s: %w: %w", path, domain.ErrSourceUnavailable, err)
	}
	m := make(map[int64][]float32, len(rows))
	skipped := 0
	for _, r := range rows {
		if len(r.Vector) == 0 {
			skipped++
			continue
		}
		m[r.GroupID] = r.Vector
	}
	return m, skipped, nil
}

func loadJSON(path string) (map[int64][]float32, int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w: %w", path, domain.ErrSourceUnavailable, err)
	}
	m, skipped, err := DecodeJSON(data)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, skipped, nil
}

// DecodeJSON parses an id-to-vector object.
func DecodeJSON(data []byte) (map[int64][]float32, int, error) {
	var raw map[string][]float32
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("expected an object of id to vector: %w", err)
	}
	m := make(map[int64][]float32, len(raw))
	skipped := 0
	for key, vec := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || len(vec) == 0 {
			skipped++
			continue
		}
		m[id] = vec
	}
	return m, skipped, nil
}

// WriteParquet stores m as (group_id, vector) rows, e.g. to convert a JSON
// export once and load the compact form afterwards.
func WriteParquet(path string, m map[int64][]float32) error {
	rows := make([]Row, 0, len(m))
	for id, vec := range m {
		rows = append(rows, Row{GroupID: id, Vector: vec})
	}
	if err := parquet.WriteFile(filepath.Clean(path), rows); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}
