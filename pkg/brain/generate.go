package brain

import (
	"hash/fnv"
	"math/rand"
	"strings"
)

// Default generation bounds. The reply opens with up to the first three
// input tokens and never exceeds fifty tokens.
const (
	DefaultPrefixTokens = 3
	DefaultMaxTokens    = 50
)

// seedValue maps a caller-supplied seed string onto a deterministic RNG
// seed. The same seed string always yields the same value.
func seedValue(seed string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return int64(h.Sum64())
}

// Generate walks the model from the tail of input, drawing each next token
// uniformly from the successor list of the previous one. The walk stops
// when the last token has no successors or the output reaches maxTokens.
// Identical (model, input, seed) triples produce identical output; callers
// wanting variety must supply a fresh seed per call.
//
// The result may be empty (empty input); callers treat that as "echo the
// input", not as an error.
func (m Model) Generate(input, seed string, prefixTokens, maxTokens int) string {
	if prefixTokens <= 0 {
		prefixTokens = DefaultPrefixTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	rng := rand.New(rand.NewSource(seedValue(seed)))

	toks := Tokenize(input)
	n := prefixTokens
	if len(toks) < n {
		n = len(toks)
	}
	out := append([]string(nil), toks[:n]...)

	for len(out) > 0 && len(out) < maxTokens {
		succs := m[out[len(out)-1]]
		if len(succs) == 0 {
			break
		}
		// Float64 is in [0,1) so the index never reaches len(succs).
		idx := int(rng.Float64() * float64(len(succs)))
		out = append(out, succs[idx])
	}
	return strings.Join(out, " ")
}
