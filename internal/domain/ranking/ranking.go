package ranking

import "github.com/kailas-cloud/audience/internal/domain/profile"

// ProfileEmbedding is a profile snapshot with the mean of its resolved group vectors.
type ProfileEmbedding struct {
	member profile.Member
	vector []float32
}

// NewProfileEmbedding creates a ProfileEmbedding.
func NewProfileEmbedding(member profile.Member, vector []float32) ProfileEmbedding {
	return ProfileEmbedding{member: member, vector: vector}
}

// Member returns the profile snapshot.
func (e ProfileEmbedding) Member() profile.Member { return e.member }

// ProfileID returns the profile identifier.
func (e ProfileEmbedding) ProfileID() int64 { return e.member.ID() }

// Vector returns the dense profile vector.
func (e ProfileEmbedding) Vector() []float32 { return e.vector }

// Result is a ranked profile with its cosine similarity to the query.
type Result struct {
	ProfileEmbedding
	score float64
}

// NewResult creates a Result.
func NewResult(e ProfileEmbedding, score float64) Result {
	return Result{ProfileEmbedding: e, score: score}
}

// Score returns the cosine similarity in [-1, 1].
func (r Result) Score() float64 { return r.score }
