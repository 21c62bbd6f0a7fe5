package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"calmcompanion/internal/models"
	"calmcompanion/internal/storage"
)

func setupStore(t *testing.T) (*CollectionStore, *storage.Store) {
	t.Helper()
	store := storage.NewStore(storage.NewMemoryBackend())
	cs := NewCollectionStore(context.Background(), store, storage.NewKeyspace("calm_app_", "default"))
	return cs, store
}

func TestGetCollectionNeverWritten(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		def  models.CardList
	}{
		{name: "nil default", key: "cards", def: nil},
		{name: "empty default", key: "cards", def: models.CardList{}},
		{name: "populated default", key: "other", def: models.CardList{{ID: "c1", Label: "Water"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetCollection(ctx, cs, tt.key, tt.def)
			if len(got) != len(tt.def) || (tt.def == nil) != (got == nil) {
				t.Errorf("GetCollection() = %v, want %v", got, tt.def)
			}
		})
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	cs, store := setupStore(t)
	ctx := context.Background()

	cards := models.CardList{{ID: "c1", Label: "Water", Emoji: "💧"}, {ID: "c2", Label: "Hungry"}}
	if err := SaveCollection(ctx, cs, "cards", cards); err != nil {
		t.Fatalf("SaveCollection() error = %v", err)
	}

	got := GetCollection(ctx, cs, "cards", models.CardList{{ID: "x", Label: "ignored"}})
	if len(got) != 2 || got[0] != cards[0] || got[1] != cards[1] {
		t.Errorf("GetCollection() = %v, want %v", got, cards)
	}

	raw, ok := store.Get(ctx, "calm_app_default_cards")
	if !ok {
		t.Fatal("expected value under calm_app_default_cards")
	}
	var decoded models.CardList
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("stored value is not JSON: %v", err)
	}
}

func TestGetCollectionInvalidStoredValues(t *testing.T) {
	cs, store := setupStore(t)
	ctx := context.Background()
	def := models.CardList{{ID: "d", Label: "Default"}}

	tests := []struct {
		name string
		raw  string
	}{
		{name: "malformed json", raw: "{not json"},
		{name: "wrong shape", raw: `{"id":"c1"}`},
		{name: "fails validation", raw: `[{"id":"c1","label":""}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Set(ctx, "calm_app_default_cards", tt.raw); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			cs.Invalidate(ctx)

			got := GetCollection(ctx, cs, "cards", def)
			if len(got) != 1 || got[0].ID != "d" {
				t.Errorf("GetCollection() = %v, want default", got)
			}
		})
	}
}

func TestNilValueRoundTrips(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()

	if err := SaveCollection(ctx, cs, "tags", []string(nil)); err != nil {
		t.Fatalf("SaveCollection() error = %v", err)
	}
	if got := GetCollection(ctx, cs, "tags", []string{"D"}); got != nil {
		t.Errorf("GetCollection() = %v, want nil", got)
	}

	// Same result once the cache is cold
	cs.Invalidate(ctx)
	if got := GetCollection(ctx, cs, "tags", []string{"D"}); got != nil {
		t.Errorf("GetCollection() after invalidate = %v, want nil", got)
	}
}

func TestSaveCollectionRejectsInvalid(t *testing.T) {
	cs, _ := setupStore(t)
	err := SaveCollection(context.Background(), cs, "cards", models.CardList{{ID: "c1"}})
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SaveCollection() error = %v, want ErrInvalidValue", err)
	}
}

func TestProfileSwitchIsolatesCollections(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()
	profiles := NewProfileRepository(cs)

	if err := profiles.SetActiveProfileID(ctx, "profile-a"); err != nil {
		t.Fatalf("SetActiveProfileID() error = %v", err)
	}
	if err := SaveCollection(ctx, cs, "cards", models.CardList{{ID: "a1", Label: "A's card"}}); err != nil {
		t.Fatalf("SaveCollection() error = %v", err)
	}
	// Prime the cache with A's data
	_ = GetCollection(ctx, cs, "cards", models.CardList{})

	if err := profiles.SetActiveProfileID(ctx, "profile-b"); err != nil {
		t.Fatalf("SetActiveProfileID() error = %v", err)
	}
	got := GetCollection(ctx, cs, "cards", models.CardList{})
	if len(got) != 0 {
		t.Errorf("profile B sees %v, want empty", got)
	}

	if id, ok := profiles.GetActiveProfileID(); !ok || id != "profile-b" {
		t.Errorf("GetActiveProfileID() = %q, %v", id, ok)
	}
}

func TestActiveProfilePersists(t *testing.T) {
	cs, store := setupStore(t)
	ctx := context.Background()

	if err := NewProfileRepository(cs).SetActiveProfileID(ctx, "p9"); err != nil {
		t.Fatalf("SetActiveProfileID() error = %v", err)
	}

	reopened := NewCollectionStore(ctx, store, cs.Keyspace())
	if id, ok := reopened.ActiveProfileID(); !ok || id != "p9" {
		t.Errorf("ActiveProfileID() after reopen = %q, %v", id, ok)
	}
}

func TestProfileRegistry(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()
	repo := NewProfileRepository(cs)

	if got := repo.ListProfiles(ctx); len(got) != 0 {
		t.Fatalf("ListProfiles() on empty store = %v", got)
	}
	if _, ok := repo.GetActiveProfileID(); ok {
		t.Error("GetActiveProfileID() should be absent on a fresh store")
	}

	for _, p := range []models.Profile{
		{ID: "a", Name: "Ana"},
		{ID: "b", Name: "Bruno"},
		{ID: "c", Name: "Carla"},
	} {
		if err := repo.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile() error = %v", err)
		}
	}

	if err := repo.UpsertProfile(ctx, models.Profile{ID: "b", Name: "Bruno Renamed"}); err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}

	got := repo.ListProfiles(ctx)
	if len(got) != 3 {
		t.Fatalf("ListProfiles() len = %d, want 3", len(got))
	}
	if got[1].ID != "b" || got[1].Name != "Bruno Renamed" {
		t.Errorf("upsert should replace in place, got %+v", got[1])
	}

	if err := repo.SetActiveProfileID(ctx, "b"); err != nil {
		t.Fatalf("SetActiveProfileID() error = %v", err)
	}
	deleted, err := repo.DeleteProfile(ctx, "b")
	if err != nil || !deleted {
		t.Fatalf("DeleteProfile() = %v, %v", deleted, err)
	}
	if _, ok := repo.GetActiveProfileID(); ok {
		t.Error("deleting the active profile should clear the pointer")
	}
	if got := repo.ListProfiles(ctx); len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("ListProfiles() after delete = %v", got)
	}
}

func TestSetActiveProfileIDIsPermissive(t *testing.T) {
	cs, _ := setupStore(t)
	repo := NewProfileRepository(cs)

	if err := repo.SetActiveProfileID(context.Background(), "ghost"); err != nil {
		t.Fatalf("SetActiveProfileID() error = %v", err)
	}
	if id, _ := repo.GetActiveProfileID(); id != "ghost" {
		t.Errorf("GetActiveProfileID() = %q, want ghost", id)
	}
}

func TestActivityLogCapped(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()
	repo := NewActivityRepository(cs)

	var last models.ActivityLog
	for i := 1; i <= 150; i++ {
		entry, err := repo.LogActivity(ctx, models.ActivityCardClick, fmt.Sprintf("click %d", i))
		if err != nil {
			t.Fatalf("LogActivity() error = %v", err)
		}
		last = entry
	}

	logs := repo.GetLogs(ctx)
	if len(logs) != MaxActivityLogs {
		t.Fatalf("len(GetLogs()) = %d, want %d", len(logs), MaxActivityLogs)
	}
	if logs[0].ID != last.ID || logs[0].Detail != "click 150" {
		t.Errorf("GetLogs()[0] = %+v, want the 150th entry", logs[0])
	}
	if logs[len(logs)-1].Detail != "click 51" {
		t.Errorf("oldest kept entry = %q, want click 51", logs[len(logs)-1].Detail)
	}

	again := repo.GetLogs(ctx)
	for i := range logs {
		if logs[i] != again[i] {
			t.Fatalf("GetLogs() not stable at %d", i)
		}
	}
}

func TestActivityLogUniqueIDs(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()
	repo := NewActivityRepository(cs)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		entry, err := repo.LogActivity(ctx, models.ActivityOther, "")
		if err != nil {
			t.Fatalf("LogActivity() error = %v", err)
		}
		if seen[entry.ID] {
			t.Fatalf("duplicate id %s", entry.ID)
		}
		seen[entry.ID] = true
	}
}

func TestReviewsSeedAndSave(t *testing.T) {
	cs, store := setupStore(t)
	ctx := context.Background()
	repo := NewReviewRepository(cs)

	seeded := repo.GetReviews(ctx)
	if len(seeded) != 3 {
		t.Fatalf("GetReviews() on fresh store = %d reviews, want 3", len(seeded))
	}
	if _, ok := store.Get(ctx, "calm_app_site_reviews"); ok {
		t.Error("seed reviews must not be persisted by GetReviews")
	}

	saved, err := repo.SaveReview(ctx, models.Review{UserName: "Joana", Rating: 5, Comment: "Lovely"})
	if err != nil {
		t.Fatalf("SaveReview() error = %v", err)
	}
	if saved.ID == "" || saved.Timestamp == 0 {
		t.Errorf("SaveReview() should fill id and timestamp, got %+v", saved)
	}

	reviews := repo.GetReviews(ctx)
	if len(reviews) != 4 {
		t.Fatalf("GetReviews() = %d reviews, want 4", len(reviews))
	}
	if reviews[0].ID != saved.ID {
		t.Errorf("newest review should be first, got %+v", reviews[0])
	}

	if _, err := repo.SaveReview(ctx, models.Review{Rating: 9}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SaveReview() with rating 9 error = %v, want ErrInvalidValue", err)
	}
}

func TestGameStatsPartialMerge(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()
	repo := NewGameStatsRepository(cs)

	five, ten := 5, 10
	if _, err := repo.SaveGameStats(ctx, models.GameStatsUpdate{SimonMaxLevel: &five}); err != nil {
		t.Fatalf("SaveGameStats() error = %v", err)
	}
	if _, err := repo.SaveGameStats(ctx, models.GameStatsUpdate{BalloonsMaxScore: &ten}); err != nil {
		t.Fatalf("SaveGameStats() error = %v", err)
	}

	stats := repo.GetGameStats(ctx)
	if stats.MemoryBestMoves != nil || stats.SimonMaxLevel != 5 || stats.BalloonsMaxScore != 10 {
		t.Errorf("GetGameStats() = %+v, want {nil 5 10}", stats)
	}
}

func TestGameStatsPersonalBests(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()
	repo := NewGameStatsRepository(cs)

	tests := []struct {
		name   string
		record func() (bool, error)
		want   bool
	}{
		{name: "first simon level", record: func() (bool, error) { return repo.RecordSimonLevel(ctx, 3) }, want: true},
		{name: "lower simon level", record: func() (bool, error) { return repo.RecordSimonLevel(ctx, 2) }, want: false},
		{name: "first memory result", record: func() (bool, error) { return repo.RecordMemoryMoves(ctx, 14) }, want: true},
		{name: "worse memory result", record: func() (bool, error) { return repo.RecordMemoryMoves(ctx, 20) }, want: false},
		{name: "better memory result", record: func() (bool, error) { return repo.RecordMemoryMoves(ctx, 9) }, want: true},
		{name: "balloon score", record: func() (bool, error) { return repo.RecordBalloonScore(ctx, 40) }, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.record()
			if err != nil {
				t.Fatalf("record error = %v", err)
			}
			if got != tt.want {
				t.Errorf("record = %v, want %v", got, tt.want)
			}
		})
	}

	stats := repo.GetGameStats(ctx)
	if stats.SimonMaxLevel != 3 || *stats.MemoryBestMoves != 9 || stats.BalloonsMaxScore != 40 {
		t.Errorf("GetGameStats() = %+v", stats)
	}
}

func TestSettingsDefaults(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()
	repo := NewSettingsRepository(cs)

	if got := repo.Language(ctx); got != models.LanguagePortuguese {
		t.Errorf("Language() = %v, want pt", got)
	}

	s := repo.GetSettings(ctx)
	s.Language = models.LanguageFrench
	if err := repo.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if got := repo.Language(ctx); got != models.LanguageFrench {
		t.Errorf("Language() = %v, want fr", got)
	}

	s.Language = "de"
	if err := repo.SaveSettings(ctx, s); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SaveSettings() with de error = %v, want ErrInvalidValue", err)
	}
}

func TestRawCollections(t *testing.T) {
	cs, _ := setupStore(t)
	ctx := context.Background()

	if err := SaveCollection(ctx, cs, "mood", json.RawMessage(`{"level": 3}`)); err != nil {
		t.Fatalf("SaveCollection() error = %v", err)
	}
	got := GetCollection[json.RawMessage](ctx, cs, "mood", nil)
	if string(got) != `{"level":3}` {
		t.Errorf("GetCollection() = %s", got)
	}

	if err := SaveCollection(ctx, cs, "mood", json.RawMessage(`{broken`)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SaveCollection() with broken JSON error = %v, want ErrInvalidValue", err)
	}
}

// switchingBackend starts a profile switch the first time trigger is read
type switchingBackend struct {
	*storage.MemoryBackend
	trigger string
	once    sync.Once
	onRead  func()
}

func (b *switchingBackend) Get(ctx context.Context, key string) (string, error) {
	if key == b.trigger {
		b.once.Do(b.onRead)
	}
	return b.MemoryBackend.Get(ctx, key)
}

func TestLogActivityKeepsProfileDuringSwitch(t *testing.T) {
	ctx := context.Background()
	keys := storage.NewKeyspace("calm_app_", "default")
	backend := &switchingBackend{MemoryBackend: storage.NewMemoryBackend(), trigger: keys.Scoped("profile-a", activityLogsKey)}
	store := storage.NewStore(backend)

	seed := `[{"id":"a-secret","timestamp":1,"type":"other","detail":"private to A"}]`
	if err := store.Set(ctx, keys.Global(activeProfileKey), "profile-a"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, keys.Scoped("profile-a", activityLogsKey), seed); err != nil {
		t.Fatal(err)
	}
	cs := NewCollectionStore(ctx, store, keys)
	repo := NewActivityRepository(cs)

	switched := make(chan struct{})
	backend.onRead = func() {
		go func() {
			defer close(switched)
			if err := cs.SetActiveProfile(ctx, "profile-b"); err != nil {
				t.Errorf("SetActiveProfile() error = %v", err)
			}
		}()
		// Give the switch a chance to run before the write
		select {
		case <-switched:
		case <-time.After(50 * time.Millisecond):
		}
	}

	if _, err := repo.LogActivity(ctx, models.ActivityOther, "logged while A active"); err != nil {
		t.Fatalf("LogActivity() error = %v", err)
	}
	<-switched

	if got := GetProfileCollection(ctx, cs, "profile-b", activityLogsKey, models.ActivityLogList{}); len(got) != 0 {
		t.Errorf("profile B log = %v, want empty", got)
	}
	got := GetProfileCollection(ctx, cs, "profile-a", activityLogsKey, models.ActivityLogList{})
	if len(got) != 2 || got[0].Detail != "logged while A active" || got[1].ID != "a-secret" {
		t.Errorf("profile A log = %v", got)
	}
}

func TestUpdateCollectionErrorWritesNothing(t *testing.T) {
	cs, store := setupStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := UpdateCollection(ctx, cs, "counter", 0, func(n int) (int, error) {
		return n + 1, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("UpdateCollection() error = %v, want boom", err)
	}
	if _, ok := store.Get(ctx, "calm_app_default_counter"); ok {
		t.Error("failed update should not write")
	}

	got, err := UpdateCollection(ctx, cs, "counter", 0, func(n int) (int, error) { return n + 1, nil })
	if err != nil || got != 1 {
		t.Errorf("UpdateCollection() = %d, %v, want 1", got, err)
	}
}

func TestPurgeProfileWithConcurrentSaves(t *testing.T) {
	cs, store := setupStore(t)
	ctx := context.Background()
	repo := NewProfileRepository(cs)

	if err := repo.UpsertProfile(ctx, models.Profile{ID: "gone", Name: "Gone"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetActiveProfileID(ctx, "gone"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("note_%d", i)
			if err := SaveCollection(ctx, cs, key, i); err != nil {
				t.Errorf("SaveCollection(%s) error = %v", key, err)
			}
		}(i)
	}
	deleted, err := repo.DeleteProfile(ctx, "gone")
	wg.Wait()
	if err != nil || !deleted {
		t.Fatalf("DeleteProfile() = %v, %v", deleted, err)
	}

	// Saves finishing after the purge resolve to the fallback profile
	left, err := store.Keys(ctx, cs.Keyspace().ProfilePrefix("gone"))
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("orphaned keys after delete: %v", left)
	}
	if id, ok := cs.ActiveProfileID(); ok {
		t.Errorf("active profile = %q, want cleared", id)
	}
}
