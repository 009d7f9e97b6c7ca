package groupmeta

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
)

const groupsCSV = "\ufeffgroup_id,name,status,members\n" +
	"10,Chess club,Kazan chess,120\n" +
	"11,\"News, daily\",,5\n" +
	"12.0,Football,\n" +
	"abc,Broken,row\n" +
	"10,Duplicate,row\n"

func TestReadCSV(t *testing.T) {
	got, skipped, err := ReadCSV(strings.NewReader(groupsCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || skipped != 2 {
		t.Fatalf("got %d groups, %d skipped; want 3, 2", len(got), skipped)
	}
	if got[0].ID() != 10 || got[0].Text() != "Chess club Kazan chess" {
		t.Errorf("row 0 = %d %q", got[0].ID(), got[0].Text())
	}
	if got[1].Name() != "News, daily" || got[1].Status() != "" {
		t.Errorf("row 1 = %q %q", got[1].Name(), got[1].Status())
	}
	if got[2].ID() != 12 || got[2].Text() != "Football" {
		t.Errorf("row 2 = %d %q", got[2].ID(), got[2].Text())
	}
}

func TestReadCSV_IDColumnAlias(t *testing.T) {
	got, _, err := ReadCSV(strings.NewReader("id,name\n7,Books\n"))
	if err != nil || len(got) != 1 || got[0].ID() != 7 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestReadCSV_NoIDColumn(t *testing.T) {
	if _, _, err := ReadCSV(strings.NewReader("name,status\nA,B\n")); err == nil {
		t.Error("expected error for header without id column")
	}
	if _, _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.csv")
	if err := os.WriteFile(path, []byte(groupsCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path, zap.NewNop())
	if err != nil || len(got) != 3 {
		t.Fatalf("got %d groups, %v", len(got), err)
	}
}

func TestLoad_Parquet(t *testing.T) {
	name, status := "Chess club", "Kazan chess"
	rows := []Row{
		{GroupID: 10, Name: &name, Status: &status},
		{GroupID: 11, Name: &name},
		{GroupID: 10, Name: &name},
	}
	path := filepath.Join(t.TempDir(), "groups.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	got, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].Text() != "Chess club Kazan chess" || got[1].Status() != "" {
		t.Errorf("unexpected groups: %q, %q", got[0].Text(), got[1].Status())
	}
}

func TestLoad_Missing(t *testing.T) {
	for _, name := range []string{"missing.csv", "missing.parquet"} {
		_, err := Load(filepath.Join(t.TempDir(), name), zap.NewNop())
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			t.Errorf("%s: expected ErrSourceUnavailable, got %v", name, err)
		}
	}
}
