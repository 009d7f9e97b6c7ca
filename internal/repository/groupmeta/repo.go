// Package groupmeta loads the group metadata table used for lexical
// fallback matching. CSV and Parquet files are supported.
package groupmeta

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
	"github.com/kailas-cloud/audience/internal/domain/group"
)

// Row is the Parquet layout of the metadata table.
type Row struct {
	GroupID int64   `parquet:"group_id"`
	Name    *string `parquet:"name,optional"`
	Status  *string `parquet:"status,optional"`
}

// Load reads the table from a .parquet file or, otherwise, a CSV file with
// a header naming group_id (or id), name and status. Rows without a valid
// id are skipped; a repeated id keeps its first row.
func Load(path string, logger *zap.Logger) ([]group.Group, error) {
	var (
		groups  []group.Group
		skipped int
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		groups, skipped, err = loadParquet(path)
	} else {
		groups, skipped, err = loadCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		logger.Warn("Skipped unusable group metadata rows",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	logger.Info("Group metadata loaded", zap.String("path", path), zap.Int("count", len(groups)))
	return groups, nil
}

func loadParquet(path string) ([]group.Group, int, error) {
	rows, err := parquet.ReadFile[Row](filepath.Clean(path))
	if err != nil {
		return nil, 0, fmt.Errorf("read parquet %s: %w: %w", path, domain.ErrSourceUnavailable, err)
	}
	t := newTable(len(rows))
	for _, r := range rows {
		t.add(r.GroupID, deref(r.Name), deref(r.Status))
	}
	return t.groups, t.skipped, nil
}

func loadCSV(path string) ([]group.Group, int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w: %w", path, domain.ErrSourceUnavailable, err)
	}
	defer f.Close()

	groups, skipped, err := ReadCSV(f)
	if err != nil {
		return nil, 0, fmt.Errorf("read csv %s: %w", path, err)
	}
	return groups, skipped, nil
}

// ReadCSV parses a metadata table and reports how many rows were skipped.
func ReadCSV(r io.Reader) ([]group.Group, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idCol, nameCol, statusCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "group_id":
			idCol = i
		case "id":
			if idCol < 0 {
				idCol = i
			}
		case "name":
			nameCol = i
		case "status":
			statusCol = i
		}
	}
	if idCol < 0 {
		return nil, 0, errors.New("header has no group_id column")
	}

	t := newTable(0)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}
		id, ok := parseID(field(rec, idCol))
		if !ok {
			t.skipped++
			continue
		}
		t.add(id, field(rec, nameCol), field(rec, statusCol))
	}
	return t.groups, t.skipped, nil
}

type table struct {
	groups  []group.Group
	seen    map[int64]struct{}
	skipped int
}

func newTable(n int) *table {
	return &table{groups: make([]group.Group, 0, n), seen: make(map[int64]struct{}, n)}
}

func (t *table) add(id int64, name, status string) {
	if _, dup := t.seen[id]; dup {
		t.skipped++
		return
	}
	t.seen[id] = struct{}{}
	t.groups = append(t.groups, group.New(id, name, status))
}

// parseID accepts integers, including the "123.0" form float exports produce.
func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
