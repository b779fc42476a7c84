package brain

import "strings"

// Model is a first-order transition model: each token maps to the ordered,
// duplicate-preserving list of tokens observed immediately following it.
// Duplicates encode empirical frequency, so the list is never deduplicated.
// No key ever maps to an empty list; emptied keys are deleted.
type Model map[string][]string

// Tokenize splits text on whitespace. Tokens keep their exact surface form;
// no case folding or punctuation stripping is applied, so "Hello" and
// "hello" are distinct tokens.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Train records every adjacent token pair of text into the model. Empty or
// whitespace-only input is a no-op.
func (m Model) Train(text string) {
	toks := Tokenize(text)
	for i := 0; i+1 < len(toks); i++ {
		m[toks[i]] = append(m[toks[i]], toks[i+1])
	}
}

// Successors returns the successor list for tok, or nil when tok was never
// observed as a predecessor.
func (m Model) Successors(tok string) []string {
	return m[tok]
}

// Entries returns the total number of successor entries across all keys.
func (m Model) Entries() int {
	n := 0
	for _, succs := range m {
		n += len(succs)
	}
	return n
}

// Purge removes every key containing phrase and every successor entry
// containing phrase from the remaining keys. Keys whose successor list
// becomes empty are deleted, keeping the no-empty-list invariant. Returns
// the number of keys and successor entries removed.
func (m Model) Purge(phrase string) (removedKeys, removedSuccessors int) {
	for k, succs := range m {
		if strings.Contains(k, phrase) {
			removedKeys++
			removedSuccessors += len(succs)
			delete(m, k)
			continue
		}
		kept := make([]string, 0, len(succs))
		for _, s := range succs {
			if strings.Contains(s, phrase) {
				removedSuccessors++
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) == 0 {
			delete(m, k)
			removedKeys++
		} else {
			m[k] = kept
		}
	}
	return removedKeys, removedSuccessors
}

// Clone returns a deep copy of the model.
func (m Model) Clone() Model {
	out := make(Model, len(m))
	for k, succs := range m {
		out[k] = append([]string(nil), succs...)
	}
	return out
}
