// Command inspect opens a parley store offline and dumps the four
// persisted collections as indented JSON. Useful for checking what a
// redaction run actually removed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"parley/pkg/logger"
	"parley/pkg/store"
)

func main() {
	var dbPath string
	var collection string
	flag.StringVar(&dbPath, "db", "", "DB path used by the server (--db value)")
	flag.StringVar(&collection, "collection", "", "one of messages|pairs|feedback|model; empty dumps all")
	flag.Parse()
	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "--db required")
		os.Exit(2)
	}
	logger.Init("error")

	if err := store.Open(filepath.Join(dbPath, "store")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	snap := store.LoadAll()
	var out interface{}
	switch collection {
	case "":
		out = snap
	case "messages":
		out = snap.Messages
	case "pairs":
		out = snap.Pairs
	case "feedback":
		out = snap.Feedback
	case "model":
		out = snap.Model
	default:
		fmt.Fprintf(os.Stderr, "unknown collection: %s\n", collection)
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
		os.Exit(1)
	}
}
