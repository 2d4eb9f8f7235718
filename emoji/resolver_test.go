package emoji

import (
	"sync"
	"testing"
)

func TestResolveKnownMood(t *testing.T) {
	r := NewResolver()
	glyph, ok := r.Resolve("joy")
	if !ok || glyph != "😂" {
		t.Fatalf("unexpected result: %q %v", glyph, ok)
	}
}

func TestResolveUnknownMood(t *testing.T) {
	r := NewResolver()
	glyph, ok := r.Resolve("not-a-mood")
	if ok || glyph != "" {
		t.Fatalf("unexpected result: %q %v", glyph, ok)
	}
}

func TestZeroValueIsUsable(t *testing.T) {
	var r Resolver
	if _, ok := r.Resolve("cry"); !ok {
		t.Fatal("expected lazy init on first resolve")
	}
}

func TestConcurrentInit(t *testing.T) {
	r := NewResolver()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if glyph, ok := r.Resolve("sob"); !ok || glyph != "😭" {
				t.Errorf("unexpected result: %q %v", glyph, ok)
			}
		}()
	}
	wg.Wait()
}
