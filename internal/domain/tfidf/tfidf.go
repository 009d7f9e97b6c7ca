// Package tfidf is a sparse TF-IDF vector space used as an approximate
// lookup over group texts.
//
// Weighting: raw term counts times smoothed idf, ln((1+n)/(1+df)) + 1,
// rows L2-normalised. Terms are lowercase runs of two or more word
// characters; only terms present in at least minDF documents enter the
// vocabulary.
package tfidf

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var termRegex = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]+`)

// Vector is a sparse L2-normalised term vector, indices ascending.
type Vector struct {
	Indices []int
	Values  []float64
}

// IsZero reports whether v has no non-zero component.
func (v Vector) IsZero() bool { return len(v.Indices) == 0 }

type posting struct {
	row    int
	weight float64
}

// Index is an immutable TF-IDF model fit over a fixed document list.
type Index struct {
	vocab    map[string]int
	idf      []float64
	rows     []Vector
	postings [][]posting // term index -> rows containing it
}

// Fit builds an index over docs. minDF below 1 is treated as 1.
func Fit(docs []string, minDF int) *Index {
	if minDF < 1 {
		minDF = 1
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		c := termCounts(doc)
		counts[i] = c
		for term := range c {
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term, n := range df {
		if n >= minDF {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	ix := &Index{
		vocab:    make(map[string]int, len(terms)),
		idf:      make([]float64, len(terms)),
		rows:     make([]Vector, len(docs)),
		postings: make([][]posting, len(terms)),
	}
	n := float64(len(docs))
	for i, term := range terms {
		ix.vocab[term] = i
		ix.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	for row, c := range counts {
		v := ix.weigh(c)
		ix.rows[row] = v
		for k, term := range v.Indices {
			ix.postings[term] = append(ix.postings[term], posting{row: row, weight: v.Values[k]})
		}
	}
	return ix
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.rows) }

// VocabularySize returns the number of retained terms.
func (ix *Index) VocabularySize() int { return len(ix.idf) }

func (ix *Index) row(i int) Vector { return ix.rows[i] }

// Transform projects text into the index vector space. Unknown terms are ignored.
func (ix *Index) Transform(text string) Vector {
	return ix.weigh(termCounts(text))
}

// Nearest returns the row with the highest cosine similarity to text.
// Ties go to the lowest row. ok is false only for an empty index.
func (ix *Index) Nearest(text string) (row int, score float64, ok bool) {
	if len(ix.rows) == 0 {
		return 0, 0, false
	}
	q := ix.Transform(text)
	if q.IsZero() {
		return 0, 0, true
	}

	scores := make(map[int]float64)
	for k, term := range q.Indices {
		w := q.Values[k]
		for _, p := range ix.postings[term] {
			scores[p.row] += w * p.weight
		}
	}

	best, bestScore := 0, 0.0
	for r, s := range scores {
		if s > bestScore || (s == bestScore && r < best) {
			best, bestScore = r, s
		}
	}
	return best, bestScore, true
}

// cosine is the reference similarity that the posting scan in Nearest
// must agree with.
func cosine(a, b Vector) float64 {
	dot, na, nb := 0.0, 0.0, 0.0
	for _, v := range a.Values {
		na += v * v
	}
	for _, v := range b.Values {
		nb += v * v
	}
	if na == 0 || nb == 0 {
		return 0
	}
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (ix *Index) weigh(counts map[string]int) Vector {
	var v Vector
	for term, c := range counts {
		if i, ok := ix.vocab[term]; ok {
			v.Indices = append(v.Indices, i)
			v.Values = append(v.Values, float64(c)*ix.idf[i])
		}
	}
	sort.Sort(byIndex(v))

	norm := 0.0
	for _, x := range v.Values {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range v.Values {
			v.Values[k] /= norm
		}
	}
	return v
}

func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range termRegex.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(tok) >= 2 {
			counts[tok]++
		}
	}
	return counts
}

type byIndex Vector

func (v byIndex) Len() int           { return len(v.Indices) }
func (v byIndex) Less(i, j int) bool { return v.Indices[i] < v.Indices[j] }
func (v byIndex) Swap(i, j int) {
	v.Indices[i], v.Indices[j] = v.Indices[j], v.Indices[i]
	v.Values[i], v.Values[j] = v.Values[j], v.Values[i]
}
