// Package brain implements the stateful text-generation core: an
// incrementally trained first-order transition model plus the three
// append-only record logs (messages, conversation pairs, feedback), all
// persisted together through pkg/store after every mutation.
package brain

import (
	"errors"
	"strings"
	"sync"

	"parley/pkg/logger"
	"parley/pkg/models"
	"parley/pkg/store"
	"parley/pkg/telemetry"
	"parley/pkg/utils"
)

// ErrEmptyPhrase is returned when a redaction phrase is empty or
// whitespace-only. Such a phrase would match every record, so it is
// rejected before any mutation.
var ErrEmptyPhrase = errors.New("redaction phrase must be non-empty")

// Options tunes generation bounds. Zero values take the defaults.
type Options struct {
	MaxTokens    int
	PrefixTokens int
}

// Brain owns the four collections and serializes every operation: one
// inbound event is fully processed (train, generate, append, persist)
// before the next is handled.
type Brain struct {
	mu sync.Mutex

	messages []models.Message
	pairs    []models.ConversationPair
	feedback []models.Feedback
	model    Model

	maxTokens    int
	prefixTokens int
}

// New returns an empty Brain.
func New(opts Options) *Brain {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.PrefixTokens <= 0 {
		opts.PrefixTokens = DefaultPrefixTokens
	}
	return &Brain{
		messages:     []models.Message{},
		pairs:        []models.ConversationPair{},
		feedback:     []models.Feedback{},
		model:        Model{},
		maxTokens:    opts.MaxTokens,
		prefixTokens: opts.PrefixTokens,
	}
}

// Load builds a Brain from the persisted snapshot. Missing or corrupt
// stores come back empty from store.LoadAll, so Load never fails.
func Load(opts Options) *Brain {
	b := New(opts)
	snap := store.LoadAll()
	b.messages = snap.Messages
	b.pairs = snap.Pairs
	b.feedback = snap.Feedback
	b.model = Model(snap.Model)
	telemetry.ModelKeys.Set(float64(len(b.model)))
	logger.Info("brain_loaded",
		"messages", len(b.messages),
		"pairs", len(b.pairs),
		"feedback", len(b.feedback),
		"model_keys", len(b.model),
	)
	return b
}

// HandleInbound processes one inbound text: appends a message record,
// trains the model on the content, generates a reply and persists all
// stores. When replyTo is non-empty a conversation pair (replyTo, content)
// is appended as well. An empty generation result falls back to echoing
// the input verbatim; that fallback is part of the contract, not an error.
//
// The returned error reports a failed durable commit. The in-memory state
// has already advanced in that case and the reply is still valid.
func (b *Brain) HandleInbound(author, content string, ts int64, replyTo, seed string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = append(b.messages, models.Message{
		ID:      utils.GenID(),
		Author:  author,
		Content: content,
		TS:      ts,
		ReplyTo: replyTo,
	})
	b.model.Train(content)
	telemetry.MessagesIngested.Inc()
	telemetry.ModelKeys.Set(float64(len(b.model)))

	reply := b.model.Generate(content, seed, b.prefixTokens, b.maxTokens)
	outcome := "generated"
	if strings.TrimSpace(reply) == "" {
		reply = content
		outcome = "echo"
	}
	telemetry.RepliesGenerated.WithLabelValues(outcome).Inc()
	telemetry.ReplyTokens.Observe(float64(len(Tokenize(reply))))

	if replyTo != "" {
		b.pairs = append(b.pairs, models.ConversationPair{
			Original: replyTo,
			Reply:    content,
			TS:       ts,
		})
	}

	logger.Debug("inbound_handled", "author", author, "outcome", outcome, "seed", seed)
	return reply, b.saveLocked()
}

// RecordFeedback appends reaction samples collected against recent
// generated outputs and persists all stores.
func (b *Brain) RecordFeedback(samples []models.Feedback) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.feedback = append(b.feedback, samples...)
	telemetry.FeedbackRecorded.Add(float64(len(samples)))
	logger.Info("feedback_recorded", "count", len(samples))
	return b.saveLocked()
}

// PurgeResult reports what a redaction run removed from each store.
type PurgeResult struct {
	Messages        int `json:"messages"`
	Pairs           int `json:"pairs"`
	Feedback        int `json:"feedback"`
	ModelKeys       int `json:"model_keys"`
	ModelSuccessors int `json:"model_successors"`
}

// Purge removes every record and model entry containing phrase (exact,
// case-sensitive substring match) from all four stores and persists them
// together. The phrase is validated before any mutation, so a rejected
// call leaves every store untouched.
func (b *Brain) Purge(phrase string) (PurgeResult, error) {
	if strings.TrimSpace(phrase) == "" {
		telemetry.PurgeRuns.WithLabelValues("rejected").Inc()
		return PurgeResult{}, ErrEmptyPhrase
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var res PurgeResult

	kept := b.messages[:0]
	for _, m := range b.messages {
		if strings.Contains(m.Content, phrase) {
			res.Messages++
			continue
		}
		kept = append(kept, m)
	}
	b.messages = kept

	keptPairs := b.pairs[:0]
	for _, p := range b.pairs {
		if strings.Contains(p.Original, phrase) || strings.Contains(p.Reply, phrase) {
			res.Pairs++
			continue
		}
		keptPairs = append(keptPairs, p)
	}
	b.pairs = keptPairs

	keptFb := b.feedback[:0]
	for _, f := range b.feedback {
		if strings.Contains(f.Content, phrase) {
			res.Feedback++
			continue
		}
		keptFb = append(keptFb, f)
	}
	b.feedback = keptFb

	res.ModelKeys, res.ModelSuccessors = b.model.Purge(phrase)

	telemetry.PurgeRuns.WithLabelValues("ok").Inc()
	telemetry.PurgedRecords.WithLabelValues("messages").Add(float64(res.Messages))
	telemetry.PurgedRecords.WithLabelValues("pairs").Add(float64(res.Pairs))
	telemetry.PurgedRecords.WithLabelValues("feedback").Add(float64(res.Feedback))
	telemetry.PurgedRecords.WithLabelValues("model").Add(float64(res.ModelSuccessors))
	telemetry.ModelKeys.Set(float64(len(b.model)))

	logger.AuditEvent("purge_completed",
		"phrase_len", len(phrase),
		"messages", res.Messages,
		"pairs", res.Pairs,
		"feedback", res.Feedback,
		"model_keys", res.ModelKeys,
		"model_successors", res.ModelSuccessors,
	)
	return res, b.saveLocked()
}

// Stats reports current store sizes.
type Stats struct {
	Messages     int `json:"messages"`
	Pairs        int `json:"pairs"`
	Feedback     int `json:"feedback"`
	ModelKeys    int `json:"model_keys"`
	ModelEntries int `json:"model_entries"`
}

func (b *Brain) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Messages:     len(b.messages),
		Pairs:        len(b.pairs),
		Feedback:     len(b.feedback),
		ModelKeys:    len(b.model),
		ModelEntries: b.model.Entries(),
	}
}

// Export returns a deep copy of the four collections.
func (b *Brain) Export() store.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return store.Snapshot{
		Messages: append([]models.Message(nil), b.messages...),
		Pairs:    append([]models.ConversationPair(nil), b.pairs...),
		Feedback: append([]models.Feedback(nil), b.feedback...),
		Model:    b.model.Clone(),
	}
}

// saveLocked persists all four stores. Callers hold b.mu.
func (b *Brain) saveLocked() error {
	err := store.SaveAll(store.Snapshot{
		Messages: b.messages,
		Pairs:    b.pairs,
		Feedback: b.feedback,
		Model:    b.model,
	})
	if err != nil {
		// In-memory state is ahead of durable state until the next
		// successful commit; the caller decides how loudly to complain.
		logger.Error("brain_persist_failed", "error", err)
	}
	return err
}
