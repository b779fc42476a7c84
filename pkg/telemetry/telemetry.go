// Package telemetry exposes Prometheus collectors for the core engine.
// Collectors use the default registry and are served by promhttp in main.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesIngested counts inbound texts accepted for training.
	MessagesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_messages_ingested_total",
		Help: "Total inbound messages trained and appended to the message log",
	})

	// RepliesGenerated counts generated replies, labelled by outcome
	// ("generated" or "echo" when the engine fell back to the input).
	RepliesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_replies_generated_total",
		Help: "Total replies produced by the generation engine",
	}, []string{"outcome"})

	// ReplyTokens observes the token length of generated replies.
	ReplyTokens = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parley_reply_tokens",
		Help:    "Token count of generated replies",
		Buckets: []float64{1, 3, 5, 10, 20, 35, 50},
	})

	// FeedbackRecorded counts appended feedback records.
	FeedbackRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_feedback_records_total",
		Help: "Total feedback records appended",
	})

	// PurgeRuns counts redaction operations, labelled by result.
	PurgeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_purge_runs_total",
		Help: "Total redaction runs",
	}, []string{"result"})

	// PurgedRecords counts records removed by redaction per store.
	PurgedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_purged_records_total",
		Help: "Records removed by redaction, by store",
	}, []string{"store"})

	// StoreSaveFailures counts failed SaveAll commits.
	StoreSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_store_save_failures_total",
		Help: "Failed durable commits of the state snapshot",
	})

	// StoreLoadCorrupt counts collections reset to empty on load.
	StoreLoadCorrupt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_store_load_corrupt_total",
		Help: "Collections reset to empty due to malformed stored documents",
	}, []string{"store"})

	// ModelKeys tracks the number of keys in the transition model.
	ModelKeys = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parley_model_keys",
		Help: "Current number of keys in the transition model",
	})
)
