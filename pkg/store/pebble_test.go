package store

import (
	"reflect"
	"testing"

	"parley/pkg/models"
)

func openTestDB(t *testing.T) {
	t.Helper()
	if err := Open(t.TempDir()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
}

func TestSaveAllLoadAllRoundTrip(t *testing.T) {
	openTestDB(t)
	want := Snapshot{
		Messages: []models.Message{
			{ID: "1-a", Author: "ada", Content: "first", TS: 1},
			{ID: "2-b", Author: "bob", Content: "second", TS: 2, ReplyTo: "first"},
		},
		Pairs:    []models.ConversationPair{{Original: "first", Reply: "second", TS: 2}},
		Feedback: []models.Feedback{{Content: "second", Up: 1, Down: 0}},
		Model:    map[string][]string{"first": {"second", "second"}},
	}
	if err := SaveAll(want); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	got := LoadAll()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadAllMissingKeysAreEmptyNotNil(t *testing.T) {
	openTestDB(t)
	snap := LoadAll()
	if snap.Messages == nil || snap.Pairs == nil || snap.Feedback == nil || snap.Model == nil {
		t.Fatalf("collections must come back initialized: %+v", snap)
	}
	if len(snap.Messages)+len(snap.Pairs)+len(snap.Feedback)+len(snap.Model) != 0 {
		t.Fatalf("fresh db must load empty: %+v", snap)
	}
}

func TestLoadAllCorruptDocResetsOnlyThatStore(t *testing.T) {
	openTestDB(t)
	want := Snapshot{
		Messages: []models.Message{{ID: "1", Author: "a", Content: "x y", TS: 1}},
		Pairs:    []models.ConversationPair{},
		Feedback: []models.Feedback{{Content: "x y", Up: 1}},
		Model:    map[string][]string{"x": {"y"}},
	}
	if err := SaveAll(want); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if err := SetKey(KeyModel, []byte("{not json")); err != nil {
		t.Fatalf("SetKey: %v", err)
	}

	got := LoadAll()
	if len(got.Model) != 0 {
		t.Fatalf("corrupt model must reset to empty, got %v", got.Model)
	}
	if !reflect.DeepEqual(got.Messages, want.Messages) {
		t.Fatalf("messages affected by model corruption: %+v", got.Messages)
	}
	if !reflect.DeepEqual(got.Feedback, want.Feedback) {
		t.Fatalf("feedback affected by model corruption: %+v", got.Feedback)
	}
}

func TestSaveAllRequiresOpenStore(t *testing.T) {
	if Ready() {
		t.Fatalf("expected closed store at test start")
	}
	if err := SaveAll(EmptySnapshot()); err == nil {
		t.Fatalf("SaveAll on closed store must fail")
	}
}

func TestListKeysPrefix(t *testing.T) {
	openTestDB(t)
	if err := SaveAll(EmptySnapshot()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if err := SetKey("meta:version", []byte("1")); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	keys, err := ListKeys("state:")
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	want := []string{KeyFeedback, KeyMessages, KeyModel, KeyPairs}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("got %v want %v", keys, want)
	}
}

func TestGetKeyRoundTrip(t *testing.T) {
	openTestDB(t)
	if err := SetKey("meta:note", []byte("hello")); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	v, err := GetKey("meta:note")
	if err != nil {
		t.Fatalf("GetKey: %v", err)
	}
	if v != "hello" {
		t.Fatalf("got %q", v)
	}
}
