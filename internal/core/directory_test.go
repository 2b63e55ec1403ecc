package core

import (
	"slices"
	"testing"
)

func identifiedClient(id, name, hotel string) *Client {
	c := NewClient(id, 0)
	c.Profile = Profile{Name: name, Hotel: hotel}
	c.identified = true
	return c
}

func clientIDs(clients []*Client) []string {
	ids := make([]string, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.ID)
	}
	slices.Sort(ids)
	return ids
}

func TestDirectoryDeduplicatesIdentity(t *testing.T) {
	dir := NewDirectory()
	first := identifiedClient("1", "alice", "nl")
	dup := identifiedClient("2", "alice", "nl")
	other := identifiedClient("3", "alice", "com")

	if !dir.Add(first) || !dir.Add(first) {
		t.Fatalf("re-adding the same client should be harmless")
	}
	if dir.Add(dup) {
		t.Fatalf("duplicate identity should be rejected")
	}
	if !dir.Add(other) {
		t.Fatalf("same name in another hotel should be accepted")
	}
	if n := dir.Len(); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}

	if got, ok := dir.Lookup("alice", "nl"); !ok || got != first {
		t.Fatalf("lookup should return the first client")
	}

	if dir.Remove(dup) {
		t.Fatalf("a client cannot remove another client's entry")
	}
	if !dir.Contains(first) {
		t.Fatalf("first should still be registered")
	}
	if !dir.Remove(first) || dir.Remove(first) {
		t.Fatalf("remove should succeed exactly once")
	}
	if dir.Contains(first) {
		t.Fatalf("first should be gone")
	}
	if n := dir.Len(); n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

func TestDirectoryClientsExcept(t *testing.T) {
	dir := NewDirectory()
	a := identifiedClient("1", "a", "nl")
	b := identifiedClient("2", "b", "nl")
	c := identifiedClient("3", "c", "nl")
	dir.Add(a)
	dir.Add(b)
	dir.Add(c)

	if got := clientIDs(dir.Clients()); !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Fatalf("unexpected clients %v", got)
	}
	if got := clientIDs(dir.Clients(b)); !slices.Equal(got, []string{"1", "3"}) {
		t.Fatalf("unexpected clients excluding b %v", got)
	}
}
