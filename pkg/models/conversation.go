package models

// ConversationPair records a (stimulus, response) exchange observed when an
// inbound message replied to a prior one. Pairs are append-only and keyed by
// insertion order alone.
type ConversationPair struct {
	Original string `json:"original"`
	Reply    string `json:"reply"`
	// TS is epoch milliseconds.
	TS int64 `json:"ts"`
}
