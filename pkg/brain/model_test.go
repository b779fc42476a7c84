package brain

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	if got := Tokenize("  hello   there world "); !reflect.DeepEqual(got, []string{"hello", "there", "world"}) {
		t.Fatalf("unexpected tokens: %v", got)
	}
	if got := Tokenize("   "); len(got) != 0 {
		t.Fatalf("expected no tokens for whitespace input, got %v", got)
	}
	// exact surface form: no case folding
	if got := Tokenize("Hello hello"); got[0] == got[1] {
		t.Fatalf("tokens should keep surface form: %v", got)
	}
}

func TestTrainAdjacentPairs(t *testing.T) {
	m := Model{}
	m.Train("the quick brown fox")
	want := Model{
		"the":   {"quick"},
		"quick": {"brown"},
		"brown": {"fox"},
	}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("got %v want %v", m, want)
	}
	// "fox" only ever appears as a successor, never as a key
	if succs := m.Successors("fox"); succs != nil {
		t.Fatalf("trailing token must not become a key, got %v", succs)
	}
	if !reflect.DeepEqual(m.Successors("quick"), []string{"brown"}) {
		t.Fatalf("unexpected successors for quick: %v", m.Successors("quick"))
	}
}

func TestTrainEmptyInputIsNoop(t *testing.T) {
	m := Model{}
	m.Train("")
	m.Train("   ")
	m.Train("single")
	if len(m) != 0 {
		t.Fatalf("expected empty model, got %v", m)
	}
}

func TestTrainKeepsDuplicateMultiplicity(t *testing.T) {
	m := Model{}
	m.Train("x y")
	m.Train("x y")
	if !reflect.DeepEqual(m["x"], []string{"y", "y"}) {
		t.Fatalf("successor lists must preserve duplicates, got %v", m["x"])
	}
}

func TestPurgeRemovesMatchingSuccessorsAndKeys(t *testing.T) {
	m := Model{
		"hello": {"world", "there"},
		"world": {"hello"},
	}
	keys, succs := m.Purge("world")
	want := Model{"hello": {"there"}}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("got %v want %v", m, want)
	}
	if keys != 1 {
		t.Fatalf("expected 1 removed key, got %d", keys)
	}
	if succs != 2 {
		t.Fatalf("expected 2 removed successors, got %d", succs)
	}
}

func TestPurgeDropsEmptiedKeys(t *testing.T) {
	m := Model{
		"a": {"bad", "bad-too"},
		"b": {"ok", "bad"},
	}
	m.Purge("bad")
	if _, ok := m["a"]; ok {
		t.Fatalf("key with no remaining successors must be removed")
	}
	if !reflect.DeepEqual(m["b"], []string{"ok"}) {
		t.Fatalf("got %v", m["b"])
	}
	for k, succs := range m {
		if len(succs) == 0 {
			t.Fatalf("key %q maps to empty successor list", k)
		}
	}
}

func TestPurgeIsCaseSensitiveSubstring(t *testing.T) {
	m := Model{"say": {"Secret", "secretive", "safe"}}
	m.Purge("secret")
	if !reflect.DeepEqual(m["say"], []string{"Secret", "safe"}) {
		t.Fatalf("expected case-sensitive substring match, got %v", m["say"])
	}
}

func TestClone(t *testing.T) {
	m := Model{"a": {"b"}}
	c := m.Clone()
	c["a"] = append(c["a"], "c")
	c.Train("z w")
	if len(m["a"]) != 1 || len(m) != 1 {
		t.Fatalf("clone must not alias the original: %v", m)
	}
}
