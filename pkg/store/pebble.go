package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"parley/pkg/logger"
	"parley/pkg/models"
	"parley/pkg/telemetry"
)

var db *pebble.DB

// Document keys for the four persisted collections. Each value is a plain
// JSON serialization of the corresponding collection, with no extra
// metadata, so external consumers can read any subset directly.
const (
	KeyMessages = "state:messages"
	KeyPairs    = "state:pairs"
	KeyFeedback = "state:feedback"
	KeyModel    = "state:model"
)

// Snapshot is the full in-memory state of the engine: the three record
// lists plus the token transition model.
type Snapshot struct {
	Messages []models.Message          `json:"messages"`
	Pairs    []models.ConversationPair `json:"pairs"`
	Feedback []models.Feedback         `json:"feedback"`
	Model    map[string][]string       `json:"model"`
}

// EmptySnapshot returns a snapshot with all four collections initialized
// and empty.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Messages: []models.Message{},
		Pairs:    []models.ConversationPair{},
		Feedback: []models.Feedback{},
		Model:    map[string][]string{},
	}
}

// Open opens (or creates) a Pebble database at the given path and keeps a
// global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// SaveAll durably writes all four collections in a single synced batch, so
// a crash can never leave one store ahead of another.
func SaveAll(snap Snapshot) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	docs := []struct {
		key string
		val interface{}
	}{
		{KeyMessages, snap.Messages},
		{KeyPairs, snap.Pairs},
		{KeyFeedback, snap.Feedback},
		{KeyModel, snap.Model},
	}
	b := db.NewBatch()
	defer b.Close()
	for _, d := range docs {
		data, err := json.Marshal(d.val)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", d.key, err)
		}
		if err := b.Set([]byte(d.key), data, nil); err != nil {
			return fmt.Errorf("failed to stage %s: %w", d.key, err)
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		telemetry.StoreSaveFailures.Inc()
		logger.Error("save_all_failed", "error", err)
		return err
	}
	logger.Debug("save_all_ok",
		"messages", len(snap.Messages),
		"pairs", len(snap.Pairs),
		"feedback", len(snap.Feedback),
		"model_keys", len(snap.Model),
	)
	return nil
}

// LoadAll reads all four collections. A missing document yields an empty
// collection; a malformed one is logged and reset to empty without
// affecting the other three. LoadAll never fails startup short of the DB
// itself being unreadable.
func LoadAll() Snapshot {
	snap := EmptySnapshot()
	if db == nil {
		return snap
	}
	loadDoc(KeyMessages, &snap.Messages)
	loadDoc(KeyPairs, &snap.Pairs)
	loadDoc(KeyFeedback, &snap.Feedback)
	loadDoc(KeyModel, &snap.Model)
	if snap.Messages == nil {
		snap.Messages = []models.Message{}
	}
	if snap.Pairs == nil {
		snap.Pairs = []models.ConversationPair{}
	}
	if snap.Feedback == nil {
		snap.Feedback = []models.Feedback{}
	}
	if snap.Model == nil {
		snap.Model = map[string][]string{}
	}
	return snap
}

// loadDoc reads and unmarshals one document into out. out keeps its zero
// value on a missing key or parse failure.
func loadDoc(key string, out interface{}) {
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, pebble.ErrNotFound) {
			logger.Warn("store_read_failed", "key", key, "error", err)
		}
		return
	}
	data := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	if err := json.Unmarshal(data, out); err != nil {
		telemetry.StoreLoadCorrupt.WithLabelValues(key).Inc()
		logger.Error("store_load_corrupt", "key", key, "error", err)
		// reset to the zero value so a partial unmarshal never leaks through
		switch p := out.(type) {
		case *[]models.Message:
			*p = nil
		case *[]models.ConversationPair:
			*p = nil
		case *[]models.Feedback:
			*p = nil
		case *map[string][]string:
			*p = nil
		}
	}
}

// GetKey returns the raw value for the given key.
func GetKey(key string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		return "", err
	}
	if closer != nil {
		defer closer.Close()
	}
	return string(v), nil
}

// SetKey stores an arbitrary key/value pair. Used by admin utilities and
// tests; callers should stay inside a safe namespace.
func SetKey(key string, value []byte) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	if err := db.Set([]byte(key), value, pebble.Sync); err != nil {
		logger.Error("set_key_failed", "key", key, "error", err)
		return err
	}
	return nil
}

// ListKeys returns all keys (as strings) that start with the given prefix.
// If prefix is empty it returns all keys in the DB.
func ListKeys(prefix string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	pfx := []byte(prefix)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if len(pfx) > 0 && !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		k := append([]byte(nil), iter.Key()...)
		out = append(out, string(k))
	}
	return out, iter.Error()
}
