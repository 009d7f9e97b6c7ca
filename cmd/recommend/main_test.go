package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/repository/embstore"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fixtureConfig(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float32{1, 0}}},
			"usage":  map[string]int{"prompt_tokens": 3, "total_tokens": 3},
		})
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	profiles := writeFixture(t, dir, "profiles.json", `[
  {"user_id": 11, "sex": 1, "city": "Kazan", "groups": [{"id": 5, "name": "KFU", "status": "students"}]},
  {"user_id": 12, "sex": 2, "city": "Kazan", "groups": [{"id": 6, "name": "Chess club"}]}
]`)
	groups := writeFixture(t, dir, "groups.csv", "group_id,name,status\n5,KFU,students\n6,Chess club,\n")
	vectors := writeFixture(t, dir, "embeddings.json", `{"5": [1, 0], "6": [0, 1]}`)

	return writeFixture(t, dir, "test.yaml", fmt.Sprintf(`
http:
  port: 8080
data:
  profiles_path: %s
  groups_path: %s
  embeddings_path: %s
embedding:
  api_key: test
  base_url: %s
  model: test-model
`, profiles, groups, vectors, server.URL))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	err := app.Run(append([]string{"recommend"}, args...))
	return out.String(), err
}

func TestRecommendCommand(t *testing.T) {
	cfg := fixtureConfig(t)

	t.Run("query is required", func(t *testing.T) {
		_, err := run(t, "--config", cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--query")
	})

	t.Run("prints ranked table", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "--query", "people in Kazan", "--top-k", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "criteria: city=Kazan")
		assert.Contains(t, out, "USER_ID")
		assert.Contains(t, out, "11")
		assert.Contains(t, out, "1.0000")
		assert.NotContains(t, out, "\n12 ")
		assert.Contains(t, out, "1 profiles in")
	})

	t.Run("nearby hint without location", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "--query", "people in Kazan nearby")
		require.NoError(t, err)
		assert.Contains(t, out, "--location")
	})
}

func TestCriteriaCommand(t *testing.T) {
	cfg := fixtureConfig(t)

	out, err := run(t, "--config", cfg, "criteria", "--query", "women in Kazan")
	require.NoError(t, err)
	assert.Equal(t, "gender=female city=Kazan\n", out)
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "vectors.json", `{"1": [0.5, 1], "2": [1, 0]}`)
	out := filepath.Join(dir, "vectors.parquet")

	stdout, err := run(t, "convert-embeddings", "--in", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote 2 group vectors")

	got, err := embstore.Load(out, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1}, got[1])
	assert.Equal(t, []float32{1, 0}, got[2])
}

func TestFlagDefaults(t *testing.T) {
	app := newApp()
	for _, flag := range app.Flags {
		switch f := flag.(type) {
		case *cli.StringFlag:
			if f.Name == "log-level" {
				assert.Equal(t, "warn", f.Value)
			}
		case *cli.IntFlag:
			if f.Name == "option" {
				assert.Equal(t, 1, f.Value)
			}
		}
	}
}
