/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
)

func seeded(seed uint64) RoomOption {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func newTestRoom(t *testing.T, catalog *Catalog, names ...string) *Room {
	t.Helper()

	room := NewRoom("TEST", catalog, seeded(42))
	for i, name := range names {
		p := NewPlayer(name)
		if i == 0 {
			p = NewOwner(name)
		}
		if !room.AddPlayer(p) {
			t.Fatalf("AddPlayer(%q) failed", name)
		}
		if _, err := room.Attach(name, Handle("h-"+name)); err != nil {
			t.Fatalf("Attach(%q): %v", name, err)
		}
	}
	return room
}

func TestRoom_AddPlayerIsCaseInsensitive(t *testing.T) {
	room := NewRoom("ABCD", nil)

	if !room.AddPlayer(NewOwner("Alice")) {
		t.Fatal("expected Alice to be added")
	}

	for _, name := range []string{"Alice", "alice", "ALICE", "aLiCe"} {
		if room.AddPlayer(NewPlayer(name)) {
			t.Errorf("AddPlayer(%q) should have been rejected", name)
		}
	}

	if got := room.PlayerNames(); !slices.Equal(got, []string{"Alice"}) {
		t.Fatalf("room changed after rejected joins: %v", got)
	}
}

func TestRoom_AddPlayerRejectsBlankNames(t *testing.T) {
	room := NewRoom("ABCD", nil)

	for _, name := range []string{"", "   "} {
		if room.AddPlayer(NewPlayer(name)) {
			t.Errorf("AddPlayer(%q) should have been rejected", name)
		}
	}
	if room.AddPlayer(nil) {
		t.Error("AddPlayer(nil) should have been rejected")
	}

	if got := room.PlayerNames(); len(got) != 0 {
		t.Fatalf("players = %v, want none", got)
	}
}

func TestRoom_FindPlayerIsCaseSensitive(t *testing.T) {
	room := NewRoom("ABCD", nil)
	room.AddPlayer(NewOwner("Alice"))

	if _, ok := room.FindPlayer("Alice"); !ok {
		t.Fatal("expected exact match to be found")
	}
	if _, ok := room.FindPlayer("alice"); ok {
		t.Fatal("lookup should not fold case")
	}
}

func TestRoom_ConcurrentAddPlayer(t *testing.T) {
	room := NewRoom("ABCD", nil)

	variants := []string{"bob", "Bob", "BOB", "bOb", "boB", "BOb", "bOB", "BoB"}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added int
	)
	for i := range 64 {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if room.AddPlayer(NewPlayer(name)) {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}(variants[i%len(variants)])
	}
	wg.Wait()

	if added != 1 {
		t.Fatalf("expected exactly one join to win, got %d", added)
	}
	if got := len(room.Players()); got != 1 {
		t.Fatalf("expected 1 player, got %d", got)
	}
}

func TestRoom_StartAssignsOneSpy(t *testing.T) {
	catalog := DefaultCatalog()
	room := newTestRoom(t, catalog, "Alice", "Bob", "Carol", "Dave", "Eve")

	for range 40 {
		round, err := room.Start()
		if err != nil {
			t.Fatalf("Start: %v", err)
		}

		occupations, err := catalog.Occupations(round.Location)
		if err != nil {
			t.Fatalf("round location not in catalog: %v", err)
		}

		spies := 0
		for _, a := range round.Assignments {
			if a.Role.IsSpy() {
				spies++
				if a.PlayerID != round.SpyID || a.Name != round.SpyName {
					t.Errorf("spy assignment does not match round spy")
				}
				continue
			}
			if a.Role.Location != round.Location {
				t.Errorf("%s got location %q, want %q", a.Name, a.Role.Location, round.Location)
			}
			if !slices.Contains(occupations, a.Role.Occupation) {
				t.Errorf("%s got occupation %q not in %v", a.Name, a.Role.Occupation, occupations)
			}
		}

		if spies != 1 {
			t.Fatalf("expected exactly one spy, got %d", spies)
		}
		if len(round.Assignments) != 5 {
			t.Fatalf("expected 5 assignments, got %d", len(round.Assignments))
		}
	}
}

func TestRoom_StartWithoutPlayers(t *testing.T) {
	room := NewRoom("ABCD", nil)

	if _, err := room.Start(); !errors.Is(err, ErrNoPlayers) {
		t.Fatalf("expected ErrNoPlayers, got %v", err)
	}
	if room.State() != Lobby {
		t.Fatal("failed start must not leave the lobby")
	}
}

func TestRoom_LocationsCycleBeforeRepeating(t *testing.T) {
	catalog := MustCatalog([]Location{
		{Name: "Bank", Occupations: []string{"Teller", "Guard"}},
		{Name: "Zoo", Occupations: []string{"Keeper", "Visitor"}},
	})

	for seed := range uint64(20) {
		room := NewRoom("ABCD", catalog, seeded(seed))
		room.AddPlayer(NewOwner("Alice"))
		room.AddPlayer(NewPlayer("Bob"))

		var played []string
		for range 5 {
			round, err := room.Start()
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			played = append(played, round.Location)
		}

		for _, pair := range [][]string{played[0:2], played[2:4]} {
			if pair[0] == pair[1] {
				t.Fatalf("seed %d: location repeated before the catalog was exhausted: %v", seed, played)
			}
		}
	}
}

func TestRoom_AvailableLocations(t *testing.T) {
	catalog := MustCatalog([]Location{
		{Name: "A", Occupations: []string{"x"}},
		{Name: "B", Occupations: []string{"x"}},
		{Name: "C", Occupations: []string{"x"}},
	})
	room := newTestRoom(t, catalog, "Alice")

	round, _ := room.Start()

	want := slices.DeleteFunc(catalog.Locations(), func(s string) bool { return s == round.Location })
	if got := room.AvailableLocations(); !slices.Equal(got, want) {
		t.Fatalf("AvailableLocations() = %v, want %v", got, want)
	}
	if got := room.PlayedLocations(); !slices.Equal(got, []string{round.Location}) {
		t.Fatalf("PlayedLocations() = %v", got)
	}
}

func TestRoom_EndResetsDuration(t *testing.T) {
	room := newTestRoom(t, nil, "Alice", "Bob")

	room.SetRoundDuration(1000)

	round, err := room.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if round.Duration != 1000 {
		t.Fatalf("round duration = %d, want 1000", round.Duration)
	}
	if room.State() != InRound {
		t.Fatalf("state = %s, want in_round", room.State())
	}

	ended, ok := room.End()
	if !ok || ended.Number != round.Number {
		t.Fatal("End should report the finished round")
	}

	if got := room.RoundDuration(); got != DefaultRoundDuration {
		t.Fatalf("duration after End = %d, want %d", got, DefaultRoundDuration)
	}
	if room.State() != Lobby {
		t.Fatalf("state = %s, want lobby", room.State())
	}
	if len(room.PlayedLocations()) != 1 {
		t.Fatal("End must not clear played locations")
	}
}

func TestRoom_OccupationsCycleWhenOutnumbered(t *testing.T) {
	catalog := MustCatalog([]Location{{Name: "Bank", Occupations: []string{"Teller", "Guard"}}})

	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("P%d", i)
	}
	room := newTestRoom(t, catalog, names...)

	round, err := room.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	counts := make(map[string]int)
	var order []string
	for _, a := range round.Assignments {
		if a.Role.IsSpy() {
			continue
		}
		counts[a.Role.Occupation]++
		order = append(order, a.Role.Occupation)
	}

	if counts["Teller"]+counts["Guard"] != 9 {
		t.Fatalf("expected 9 non-spy assignments, got %v", counts)
	}
	if d := counts["Teller"] - counts["Guard"]; d < -1 || d > 1 {
		t.Fatalf("occupations not cycled evenly: %v", counts)
	}
	for i := 2; i < len(order); i++ {
		if order[i] != order[i-2] {
			t.Fatalf("occupations should repeat in shuffled order: %v", order)
		}
	}
}

func TestRound_ByHandle(t *testing.T) {
	room := newTestRoom(t, nil, "Alice", "Bob")

	round, _ := room.Start()

	byHandle := round.ByHandle()
	if len(byHandle) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(byHandle))
	}

	spies := 0
	for _, role := range byHandle {
		if role.IsSpy() {
			spies++
		}
	}
	if spies != 1 {
		t.Fatalf("expected one spy, got %d", spies)
	}
}

func TestRound_ByHandleSharedHandle(t *testing.T) {
	room := newTestRoom(t, nil, "Alice", "Bob", "Carol")

	if _, err := room.Attach("Bob", "shared"); err != nil {
		t.Fatal(err)
	}
	if _, err := room.Attach("Carol", "shared"); err != nil {
		t.Fatal(err)
	}

	round, err := room.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got := len(round.Assignments); got != 3 {
		t.Fatalf("every player must still be assigned, got %d", got)
	}
	if got := len(round.ByHandle()); got != 2 {
		t.Fatalf("expected shared handle to collapse to 2 entries, got %d", got)
	}
}

func TestRoom_ConcurrentStart(t *testing.T) {
	catalog := DefaultCatalog()
	room := newTestRoom(t, catalog, "Alice", "Bob", "Carol")

	rounds := make(chan Round, catalog.Len())

	var wg sync.WaitGroup
	for range catalog.Len() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			round, err := room.Start()
			if err != nil {
				t.Error(err)
				return
			}
			rounds <- round
		}()
	}
	wg.Wait()
	close(rounds)

	numbers := make(map[int]bool)
	locations := make(map[string]bool)
	for r := range rounds {
		numbers[r.Number] = true
		locations[r.Location] = true
	}

	if len(numbers) != catalog.Len() {
		t.Fatalf("expected %d distinct rounds, got %d", catalog.Len(), len(numbers))
	}
	if len(locations) != catalog.Len() {
		t.Fatalf("expected every location exactly once, got %d distinct", len(locations))
	}
}

func TestRoom_AttachAndDetach(t *testing.T) {
	room := NewRoom("ABCD", nil)
	room.AddPlayer(NewOwner("Alice"))

	if _, err := room.Attach("Nobody", "h1"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}

	room.Attach("Alice", "h1")
	room.Attach("Alice", "h2")

	if _, ok := room.Detach("h1"); ok {
		t.Fatal("stale handle must not detach a re-attached player")
	}

	p, _ := room.FindPlayer("Alice")
	if p.Handle() != "h2" {
		t.Fatalf("handle = %q, want h2", p.Handle())
	}

	if _, ok := room.Detach("h2"); !ok {
		t.Fatal("expected current handle to detach")
	}
	p, _ = room.FindPlayer("Alice")
	if p.Attached() {
		t.Fatal("player still attached after Detach")
	}
}

func TestRoom_RemovePlayer(t *testing.T) {
	room := NewRoom("ABCD", nil)
	room.AddPlayer(NewOwner("Alice"))
	room.AddPlayer(NewPlayer("Bob"))

	if _, err := room.RemovePlayer("Alice"); !errors.Is(err, ErrOwnerCannotLeave) {
		t.Fatalf("expected ErrOwnerCannotLeave, got %v", err)
	}
	if _, err := room.RemovePlayer("Zed"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
	if _, err := room.RemovePlayer("Bob"); err != nil {
		t.Fatalf("RemovePlayer(Bob): %v", err)
	}

	if got := room.PlayerNames(); !slices.Equal(got, []string{"Alice"}) {
		t.Fatalf("players = %v", got)
	}
	if !room.AddPlayer(NewPlayer("bob")) {
		t.Fatal("name should be free again after leaving")
	}
}
