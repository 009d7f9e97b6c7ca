package refine

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
)

type stubCompleter struct {
	answer string
	err    error
	system string
	user   string
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.answer, s.err
}

const answer = `Here are some options:
1) «разработчики ПО 25–40 лет в Санкт-Петербурге»
2) «студенты IT-специальностей»

3. "frontend developers in Kazan"
`

func TestParseSuggestions(t *testing.T) {
	got := ParseSuggestions(answer)
	want := []string{
		"разработчики ПО 25–40 лет в Санкт-Петербурге",
		"студенты IT-специальностей",
		"frontend developers in Kazan",
	}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option %d = %q, want %q", i, got[i], want[i])
		}
	}
	if ParseSuggestions("no list here") != nil {
		t.Error("expected no options")
	}
	if got := ParseSuggestions("1) «»\n2) ok"); len(got) != 1 || got[0] != "ok" {
		t.Errorf("empty option must be skipped, got %q", got)
	}
}

func TestNeedsLocation(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"кофейни рядом", true},
		{"Студенты ПОБЛИЗОСТИ", true},
		{"gyms near me", true},
		{"айтишники питер", false},
		{"students in Kazan", false},
	}
	for _, tt := range tests {
		if got := NeedsLocation(tt.query); got != tt.want {
			t.Errorf("NeedsLocation(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestWithLocation(t *testing.T) {
	if got := WithLocation("кофейни рядом", "Казань"); got != "кофейни рядом Казань" {
		t.Errorf("got %q", got)
	}
	if got := WithLocation("кофейни рядом", "  "); got != "кофейни рядом" {
		t.Errorf("blank location: got %q", got)
	}
	if got := WithLocation("студенты", "Казань"); got != "студенты" {
		t.Errorf("query without trigger must be unchanged, got %q", got)
	}
}

func TestRefine(t *testing.T) {
	c := &stubCompleter{answer: answer}
	s := NewService(c, zap.NewNop())

	got, err := s.Refine(context.Background(), "айтишники рядом", "Казань", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "студенты IT-специальностей" {
		t.Errorf("got %q", got)
	}
	if c.user != "айтишники рядом Казань" || c.system != SystemPrompt {
		t.Errorf("unexpected request: user=%q", c.user)
	}

	got, err = s.Refine(context.Background(), "айтишники", "", 10)
	if err != nil || got != "разработчики ПО 25–40 лет в Санкт-Петербурге" {
		t.Errorf("out-of-range index: got %q, %v", got, err)
	}
}

func TestRefine_Errors(t *testing.T) {
	s := NewService(&stubCompleter{err: errors.New("timeout")}, zap.NewNop())
	if _, err := s.Refine(context.Background(), "q", "", 0); !errors.Is(err, domain.ErrRefinerError) {
		t.Errorf("expected ErrRefinerError, got %v", err)
	}

	s = NewService(&stubCompleter{answer: "Sorry, I cannot help."}, zap.NewNop())
	if _, err := s.Refine(context.Background(), "q", "", 0); !errors.Is(err, domain.ErrRefinerError) {
		t.Errorf("expected ErrRefinerError, got %v", err)
	}
}
