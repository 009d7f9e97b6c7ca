// Package refine turns a raw audience query into a more specific one with
// the help of a chat model.
package refine

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
)

// SystemPrompt instructs the model to answer with a numbered list of options.
const SystemPrompt = `You rewrite a raw audience-search query into 4-5 precise variants for finding a target audience.
Focus on profession, age, sex, city, interests, education and income where relevant.
Do not ask questions. Answer in the language of the query, one variant per line, formatted as N) «variant».
Example:
Input: «айтишники питер»
Output:
1) «разработчики ПО 25–40 лет в Санкт-Петербурге»
2) «студенты IT-специальностей вузов Санкт-Петербурга»
3) «frontend-разработчики в Питере»`

var locationTriggers = []string{
	"рядом", "поблизости", "возле", "недалеко", "вблизи",
	"nearby", "near me", "close to",
}

var optionRegex = regexp.MustCompile(`^\d+\s*[).]\s*(.+)$`)

// Completer sends one system+user exchange to a chat model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service produces refined query options.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// NewService creates a refinement service.
func NewService(completer Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Suggestions returns the model's refined variants of query. When the
// query asks for something nearby and location is known, the location is
// appended before asking.
func (s *Service) Suggestions(ctx context.Context, query, location string) ([]string, error) {
	query = WithLocation(query, location)
	answer, err := s.completer.Complete(ctx, SystemPrompt, query)
	if err != nil {
		return nil, fmt.Errorf("complete: %w: %w", domain.ErrRefinerError, err)
	}
	options := ParseSuggestions(answer)
	if len(options) == 0 {
		s.logger.Warn("Refiner returned no parseable options", zap.String("answer", answer))
		return nil, fmt.Errorf("no options in answer: %w", domain.ErrRefinerError)
	}
	return options, nil
}

// Refine returns the option at index (0-based) of the suggestions for
// query. An out-of-range index selects the first option.
func (s *Service) Refine(ctx context.Context, query, location string, index int) (string, error) {
	options, err := s.Suggestions(ctx, query, location)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(options) {
		index = 0
	}
	s.logger.Debug("Query refined",
		zap.String("query", query),
		zap.String("refined", options[index]),
		zap.Int("options", len(options)),
	)
	return options[index], nil
}

// NeedsLocation reports whether the query asks for something nearby.
func NeedsLocation(query string) bool {
	q := strings.ToLower(query)
	for _, t := range locationTriggers {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

// WithLocation appends location to a query that needs one.
func WithLocation(query, location string) string {
	location = strings.TrimSpace(location)
	if location == "" || !NeedsLocation(query) {
		return query
	}
	return query + " " + location
}

// ParseSuggestions extracts the options of a numbered list such as
// `1) «first»`, dropping the numbering and quote marks. Other lines are ignored.
func ParseSuggestions(text string) []string {
	var options []string
	for _, line := range strings.Split(text, "\n") {
		m := optionRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		opt := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), `«»"“”`))
		if opt != "" {
			options = append(options, opt)
		}
	}
	return options
}
