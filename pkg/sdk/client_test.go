package audience

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
	"github.com/kailas-cloud/audience/internal/domain/group"
	"github.com/kailas-cloud/audience/internal/domain/profile"
	"github.com/kailas-cloud/audience/internal/lexicon"
	chiTransport "github.com/kailas-cloud/audience/internal/transport/chi"
	audienceuc "github.com/kailas-cloud/audience/internal/usecase/audience"
	healthuc "github.com/kailas-cloud/audience/internal/usecase/health"
	"github.com/kailas-cloud/audience/internal/usecase/queryparse"
	"github.com/kailas-cloud/audience/internal/usecase/rank"
	"github.com/kailas-cloud/audience/internal/usecase/resolve"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s stubEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	domain.UsageFromContext(ctx).AddTokens(5)
	return domain.EmbeddingResult{Embedding: s.vec, TotalTokens: 5}, nil
}

func newTestAPI(t *testing.T, emb stubEmbedder, keys ...string) *httptest.Server {
	t.Helper()
	lx, err := lexicon.Default()
	if err != nil {
		t.Fatalf("lexicon: %v", err)
	}

	pool := []profile.Profile{
		profile.New(1, "", profile.SexFemale, "Kazan", "Russia", []group.Group{group.New(5, "KFU", "students")}),
		profile.New(2, "", profile.SexMale, "Kazan", "Russia", []group.Group{group.New(6, "Chess", "")}),
		profile.New(3, "", profile.SexFemale, "Moscow", "Russia", []group.Group{group.New(5, "KFU", "students")}),
	}
	vectors := map[int64][]float32{5: {1, 0}, 6: {0, 1}}

	svc := audienceuc.New(
		pool,
		queryparse.New(lx, queryparse.NewNormalizer(lx)),
		resolve.New(vectors, nil, nil, resolve.DefaultThreshold),
		rank.New(emb),
		zap.NewNop(),
	)
	health := healthuc.New(len(pool), nil, nil)
	server := httptest.NewServer(chiTransport.NewServer(svc, health, 10, 100, zap.NewNop()).Routes(keys))
	t.Cleanup(server.Close)
	return server
}

func TestNew_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "://bad"} {
		if _, err := New(u); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestRecommend(t *testing.T) {
	server := newTestAPI(t, stubEmbedder{vec: []float32{1, 0}}, "secret")
	reg := prometheus.NewRegistry()
	client, err := New(server.URL+"/", WithAPIKey("secret"), WithPrometheus(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec, err := client.Recommend(context.Background(), RecommendRequest{Query: "people in Kazan", TopK: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Criteria.City == nil || *rec.Criteria.City != "Kazan" {
		t.Errorf("unexpected criteria: %+v", rec.Criteria)
	}
	if len(rec.Items) != 1 || rec.Items[0].UserID != 1 || rec.Items[0].Gender != "female" {
		t.Fatalf("unexpected items: %+v", rec.Items)
	}
	if rec.Stats.Pool != 3 || rec.Stats.Filtered != 2 || rec.Stats.Groups.Direct != 2 {
		t.Errorf("unexpected stats: %+v", rec.Stats)
	}
	if rec.EmbeddingTokens != 5 {
		t.Errorf("tokens = %d, want 5", rec.EmbeddingTokens)
	}
	if rec.RunID == "" {
		t.Error("expected run id")
	}

	mfs, err := reg.Gather()
	if err != nil || len(mfs) == 0 {
		t.Fatalf("expected sdk metrics, got %d (%v)", len(mfs), err)
	}
}

func TestRecommend_Errors(t *testing.T) {
	server := newTestAPI(t, stubEmbedder{vec: []float32{1, 0}})
	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if _, err := client.Recommend(ctx, RecommendRequest{Query: "  "}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}

	_, err = client.Recommend(ctx, RecommendRequest{Query: "women in Kazan, 60-70"})
	if !errors.Is(err, ErrNoValidProfiles) {
		t.Fatalf("expected ErrNoValidProfiles, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 APIError, got %v", err)
	}
}

func TestRecommend_ProviderFailure(t *testing.T) {
	server := newTestAPI(t, stubEmbedder{err: domain.ErrEmbeddingProviderError})
	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Recommend(context.Background(), RecommendRequest{Query: "people in Kazan"})
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestUnauthorized(t *testing.T) {
	server := newTestAPI(t, stubEmbedder{vec: []float32{1, 0}}, "secret")
	client, err := New(server.URL, WithAPIKey("wrong"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Criteria(context.Background(), "people in Kazan")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "unauthorized" {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}

func TestCriteria(t *testing.T) {
	server := newTestAPI(t, stubEmbedder{vec: []float32{1, 0}})
	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c, err := client.Criteria(context.Background(), "women in Kazan, 18-22")
	if err != nil {
		t.Fatalf("Criteria: %v", err)
	}
	if c.MinAge == nil || *c.MinAge != 18 || c.MaxAge == nil || *c.MaxAge != 22 {
		t.Errorf("age = %v..%v", c.MinAge, c.MaxAge)
	}
	if c.Gender == nil || *c.Gender != "female" || c.City == nil || *c.City != "Kazan" {
		t.Errorf("unexpected criteria: %+v", c)
	}

	if _, err := client.Criteria(context.Background(), ""); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	server := newTestAPI(t, stubEmbedder{vec: []float32{1, 0}}, "secret")
	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	h, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "ok" || h.Checks["profiles"] != "ok" {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestRegisterOrReuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := newSDKMetrics(reg)
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}
	b, err := newSDKMetrics(reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}

	a.requests.WithLabelValues("recommend", "ok").Inc()
	if got := testutil.ToFloat64(b.requests.WithLabelValues("recommend", "ok")); got != 1 {
		t.Errorf("shared counter = %v, want 1", got)
	}
}
