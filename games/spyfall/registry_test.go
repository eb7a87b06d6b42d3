/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRegistry_CreateAndLookup(t *testing.T) {
	reg := NewRegistry()
	room := NewRoom("ABCD", nil)

	if !reg.CreateAndStore("ABCD", room) {
		t.Fatal("expected first store to succeed")
	}
	if reg.CreateAndStore("ABCD", NewRoom("ABCD", nil)) {
		t.Fatal("expected duplicate code to be refused")
	}

	got, ok := reg.Lookup("ABCD")
	if !ok || got != room {
		t.Fatal("lookup did not return the stored room")
	}
	if _, ok := reg.Lookup("ZZZZ"); ok {
		t.Fatal("unexpected room for unknown code")
	}
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := fmt.Sprintf("R%03d", i)
			reg.CreateAndStore(code, NewRoom(code, nil))
		}(i)
	}
	wg.Wait()

	if got := reg.Len(); got != 64 {
		t.Fatalf("expected 64 rooms, got %d", got)
	}
}

func TestRegistry_Reap(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base

	clock := func() time.Time { return now }

	reg := NewRegistry()
	reg.CreateAndStore("OLD1", NewRoom("OLD1", nil, WithClock(clock)))

	now = base.Add(time.Hour)
	fresh := NewRoom("NEW1", nil, WithClock(clock))
	reg.CreateAndStore("NEW1", fresh)

	reaped := reg.Reap(base.Add(30 * time.Minute))
	if len(reaped) != 1 || reaped[0] != "OLD1" {
		t.Fatalf("expected only OLD1 reaped, got %v", reaped)
	}
	if _, ok := reg.Lookup("NEW1"); !ok {
		t.Fatal("fresh room was reaped")
	}
}
