package textnorm

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Students in Kazan, 18-22!", []string{"students", "in", "kazan", "18-22"}},
		{"Москвичи и Санкт-Петербург", []string{"москвичи", "и", "санкт-петербург"}},
		{"  ", nil},
		{"snake_case word", []string{"snake_case", "word"}},
	}
	for _, tc := range tests {
		if got := Tokenize(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSnowballLemmatizer_Inflections(t *testing.T) {
	l := SnowballLemmatizer{}
	pairs := [][2]string{
		{"muscovites", "muscovite"},
		{"students", "student"},
		{"москвичи", "москвич"},
		{"казани", "казань"},
		{"студенты", "студент"},
	}
	for _, p := range pairs {
		if a, b := l.Lemma(p[0]), l.Lemma(p[1]); a != b {
			t.Errorf("Lemma(%q) = %q, Lemma(%q) = %q; want equal", p[0], a, p[1], b)
		}
	}
}

func TestSnowballLemmatizer_PassThrough(t *testing.T) {
	l := SnowballLemmatizer{}
	for _, tok := range []string{"18-22", "2024", "東京"} {
		if got := l.Lemma(tok); got != tok {
			t.Errorf("Lemma(%q) = %q, want unchanged", tok, got)
		}
	}
}

func TestSnowballLemmatizer_Deterministic(t *testing.T) {
	l := SnowballLemmatizer{}
	first := l.Lemma("петербуржцы")
	for i := 0; i < 10; i++ {
		if got := l.Lemma("петербуржцы"); got != first {
			t.Fatalf("non-deterministic lemma: %q vs %q", got, first)
		}
	}
}

type upperLemmatizer struct{}

func (upperLemmatizer) Lemma(token string) string { return "<" + token + ">" }

func TestDictionaryLemmatizer(t *testing.T) {
	forms := map[string]string{"питерцы": "питерец"}
	d := NewDictionaryLemmatizer(forms, upperLemmatizer{})
	forms["питерцы"] = "mutated"

	if got := d.Lemma("питерцы"); got != "<питерец>" {
		t.Errorf("dictionary hit = %q, want <питерец>", got)
	}
	if got := d.Lemma("other"); got != "<other>" {
		t.Errorf("dictionary miss = %q, want <other>", got)
	}

	bare := NewDictionaryLemmatizer(map[string]string{"children": "child"}, nil)
	if got := bare.Lemma("children"); got != "child" {
		t.Errorf("no fallback hit = %q, want child", got)
	}
	if got := bare.Lemma("x"); got != "x" {
		t.Errorf("no fallback miss = %q, want x", got)
	}
}

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(upperLemmatizer{})
	toks := n.Normalize("Hello World")
	want := []Token{{"hello", "<hello>"}, {"world", "<world>"}}
	if !reflect.DeepEqual(toks, want) {
		t.Errorf("Normalize = %v, want %v", toks, want)
	}
	if got := n.Lemma("ABC"); got != "<abc>" {
		t.Errorf("Lemma = %q", got)
	}
	set := n.LemmaSet("a b a")
	if len(set) != 2 {
		t.Errorf("LemmaSet size = %d, want 2", len(set))
	}
}
