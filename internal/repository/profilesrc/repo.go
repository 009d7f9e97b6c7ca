// Package profilesrc loads harvested profile records from a JSON file.
package profilesrc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
	"github.com/kailas-cloud/audience/internal/domain/group"
	"github.com/kailas-cloud/audience/internal/domain/profile"
)

// Load reads a JSON array of profile records. Records that cannot be
// decoded, or that lack a user id, are skipped and logged. A repeated
// user id keeps its first record.
func Load(path string, logger *zap.Logger) ([]profile.Profile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read profiles %s: %w: %w", path, domain.ErrSourceUnavailable, err)
	}
	profiles, skipped, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode profiles %s: %w", path, err)
	}
	if skipped > 0 {
		logger.Warn("Skipped unusable profile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	logger.Info("Profiles loaded", zap.String("path", path), zap.Int("count", len(profiles)))
	return profiles, nil
}

// Decode parses a JSON array of records and reports how many were skipped.
// Only a document that is not a JSON array is an error.
func Decode(data []byte) ([]profile.Profile, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("expected a JSON array of records: %w", err)
	}

	out := make([]profile.Profile, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	skipped := 0
	for _, item := range raw {
		var rec record
		if err := group.UnmarshalNumbers(item, &rec); err != nil {
			skipped++
			continue
		}
		p, ok := rec.toDomain()
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[p.ID()]; dup {
			skipped++
			continue
		}
		seen[p.ID()] = struct{}{}
		out = append(out, p)
	}
	return out, skipped, nil
}

// record is one harvested profile. Fields other than the id are loosely
// typed because harvesters and spreadsheet exports disagree on shapes.
type record struct {
	UserID  any             `json:"user_id"`
	BDate   any             `json:"bdate"`
	Sex     any             `json:"sex"`
	City    any             `json:"city"`
	Country any             `json:"country"`
	Groups  json.RawMessage `json:"groups"`
}

func (r record) toDomain() (profile.Profile, bool) {
	id, ok := group.ParseID(r.UserID)
	if !ok {
		return profile.Profile{}, false
	}
	return profile.New(
		id,
		titleOf(r.BDate),
		sexOf(r.Sex),
		titleOf(r.City),
		titleOf(r.Country),
		group.DecodeList(r.Groups),
	), true
}

// sexOf accepts the platform code (1 female, 2 male) or a label.
func sexOf(v any) profile.Sex {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return profile.SexFromCode(int(n))
		}
		return profile.SexUnknown
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return profile.SexFromCode(n)
		}
		return profile.ParseSex(x)
	default:
		return profile.SexUnknown
	}
}

// titleOf accepts a plain string or a platform object with a title.
func titleOf(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		if t, ok := x["title"].(string); ok {
			return strings.TrimSpace(t)
		}
	}
	return ""
}
