package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	lx, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(lx.Demonyms) == 0 || len(lx.Synonyms) == 0 || len(lx.Categories) == 0 {
		t.Fatal("default lexicon is missing sections")
	}
	if lx.Age.MinBare != 10 {
		t.Errorf("MinBare = %d, want 10", lx.Age.MinBare)
	}
	if lx.Age.MaxBare != 120 {
		t.Errorf("MaxBare = %d, want 120", lx.Age.MaxBare)
	}
	if lx.Categories[0].Term != "подросток" {
		t.Errorf("category order not preserved, first = %q", lx.Categories[0].Term)
	}
}

func TestDefault_FemaleTermsAreSeparate(t *testing.T) {
	lx, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	var hasStudent, hasGirls bool
	for _, term := range lx.Gender.Female {
		if term == "студентки" {
			hasStudent = true
		}
		if term == "девушки" {
			hasGirls = true
		}
		if term == "студенткидевушки" {
			t.Error("glued female term must not be present")
		}
	}
	if !hasStudent || !hasGirls {
		t.Errorf("expected both female terms, got %v", lx.Gender.Female)
	}
}

func TestParse_Normalizes(t *testing.T) {
	lx, err := Parse([]byte(`
demonyms:
  - city: Kazan
    forms: [" Kazanian "]
categories:
  - {term: Student, min: 17, max: 25}
gender:
  female: [Women]
age:
  units: [Years]
lemmas:
  People: Person
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lx.Demonyms[0].City != "Kazan" || lx.Demonyms[0].Forms[0] != "kazanian" {
		t.Errorf("unexpected demonym: %+v", lx.Demonyms[0])
	}
	if lx.Categories[0].Term != "student" || lx.Gender.Female[0] != "women" || lx.Age.Units[0] != "years" {
		t.Error("terms were not lowercased")
	}
	if lx.Lemmas["people"] != "person" {
		t.Errorf("lemmas = %v", lx.Lemmas)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"duplicate synonym": `
synonyms:
  A: [x]
  B: [x]
age: {units: [y]}`,
		"bad range": `
categories:
  - {term: t, min: 30, max: 20}
age: {units: [y]}`,
		"no city": `
demonyms:
  - forms: [a]
age: {units: [y]}`,
		"no forms": `
demonyms:
  - city: A
age: {units: [y]}`,
		"no units": `
categories:
  - {term: t, min: 1, max: 2}`,
		"not yaml": `: : :`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad(t *testing.T) {
	lx, err := Load("")
	if err != nil || lx == nil {
		t.Fatalf("Load(\"\"): %v", err)
	}

	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte("age:\n  units: [years]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	lx, err = Load(path)
	if err != nil {
		t.Fatalf("Load(file): %v", err)
	}
	if len(lx.Demonyms) != 0 {
		t.Error("file lexicon must replace the default")
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("expected read error naming the file, got %v", err)
	}
}
