package repositories

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/colortap-studio/colortap_api/model"
)

// newTestDB opens a private in-memory sqlite database migrated with the full
// schema. cache=shared keeps the database alive across pooled connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.UserStats{}, &model.GameSession{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestStatsRepository_CreateAndGet(t *testing.T) {
	repo := NewStatsRepository(newTestDB(t))

	stats := model.NewUserStats("u1", "alice", 5, 3, 3, 1.0, time.Now())
	if err := repo.Create(stats); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if stats.ID == "" {
		t.Error("Create did not assign an id")
	}

	got, err := repo.GetByUserID("u1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.BestScore != 5 || got.TotalGames != 1 || got.Version != 0 {
		t.Errorf("got = %+v, want best 5, games 1, version 0", got)
	}
}

func TestStatsRepository_GetUnknownUser(t *testing.T) {
	repo := NewStatsRepository(newTestDB(t))

	_, err := repo.GetByUserID("nobody")
	if err != gorm.ErrRecordNotFound {
		t.Errorf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestStatsRepository_CreateDuplicateUser(t *testing.T) {
	repo := NewStatsRepository(newTestDB(t))

	if err := repo.Create(model.NewUserStats("u1", "alice", 5, 3, 3, 1.0, time.Now())); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Create(model.NewUserStats("u1", "alice", 7, 2, 3, 1.0, time.Now()))
	if !IsDuplicateKey(err) {
		t.Errorf("err = %v, want duplicate key", err)
	}
}

func TestStatsRepository_UpdateVersioned(t *testing.T) {
	repo := NewStatsRepository(newTestDB(t))

	stats := model.NewUserStats("u1", "alice", 5, 3, 3, 1.0, time.Now())
	if err := repo.Create(stats); err != nil {
		t.Fatalf("Create: %v", err)
	}

	next := *stats
	next.Apply("alice", 7, 4, 4, 0.8, time.Now())

	ok, err := repo.UpdateVersioned(&next, 0)
	if err != nil {
		t.Fatalf("UpdateVersioned: %v", err)
	}
	if !ok {
		t.Fatal("UpdateVersioned = false, want true for current version")
	}

	got, err := repo.GetByUserID("u1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.BestScore != 7 || got.TotalGames != 2 || got.Version != 1 {
		t.Errorf("got = %+v, want best 7, games 2, version 1", got)
	}
}

func TestStatsRepository_UpdateVersionedStale(t *testing.T) {
	repo := NewStatsRepository(newTestDB(t))

	stats := model.NewUserStats("u1", "alice", 5, 3, 3, 1.0, time.Now())
	if err := repo.Create(stats); err != nil {
		t.Fatalf("Create: %v", err)
	}

	next := *stats
	next.Apply("alice", 7, 4, 4, 0.8, time.Now())
	if ok, err := repo.UpdateVersioned(&next, 0); err != nil || !ok {
		t.Fatalf("UpdateVersioned: ok=%v err=%v", ok, err)
	}

	// A second writer still holding version 0 must be rejected.
	stale := *stats
	stale.Apply("alice", 2, 1, 3, 1.2, time.Now())
	ok, err := repo.UpdateVersioned(&stale, 0)
	if err != nil {
		t.Fatalf("UpdateVersioned: %v", err)
	}
	if ok {
		t.Error("UpdateVersioned = true for stale version, want false")
	}

	got, err := repo.GetByUserID("u1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.TotalGames != 2 || got.BestScore != 7 {
		t.Errorf("got = %+v, stale write must not land", got)
	}
}

func TestStatsRepository_TopByBestScore(t *testing.T) {
	repo := NewStatsRepository(newTestDB(t))

	scores := []int{12, 40, 7, 33}
	for i, score := range scores {
		stats := model.NewUserStats(fmt.Sprintf("u%d", i), fmt.Sprintf("player%d", i), score, 1, 2, 1.0, time.Now())
		if err := repo.Create(stats); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}

	top, err := repo.TopByBestScore(3)
	if err != nil {
		t.Fatalf("TopByBestScore: %v", err)
	}

	if len(top) != 3 {
		t.Fatalf("len(top) = %d, want 3", len(top))
	}
	for i, want := range []int{40, 33, 12} {
		if top[i].BestScore != want {
			t.Errorf("top[%d].BestScore = %d, want %d", i, top[i].BestScore, want)
		}
	}
}

func TestSessionRepository_InsertAssignsIDAndTimestamp(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))

	session := &model.GameSession{
		UserID:         "u1",
		SessionID:      "s1",
		Score:          5,
		CorrectAnswers: 3,
		TotalQuestions: 3,
		GameMode:       "color-tap",
		// A client-supplied timestamp must be replaced server-side.
		Timestamp: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Insert(session); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if session.ID == "" {
		t.Error("Insert did not assign an id")
	}
	if session.Timestamp.Year() == 1999 {
		t.Error("Insert kept the client timestamp, want server-assigned")
	}
}

func TestSessionRepository_RecentByUserOrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		session := &model.GameSession{
			UserID:         "u1",
			SessionID:      fmt.Sprintf("s%d", i),
			Score:          i,
			CorrectAnswers: 1,
			TotalQuestions: 2,
			GameMode:       "color-tap",
		}
		if err := repo.Insert(session); err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
		// Pin distinct timestamps so the ordering assertion is exact.
		err := db.Model(&model.GameSession{}).
			Where("id = ?", session.ID).
			Update("timestamp", base.Add(time.Duration(i)*time.Minute)).Error
		if err != nil {
			t.Fatalf("pin timestamp #%d: %v", i, err)
		}
	}

	other := &model.GameSession{UserID: "u2", SessionID: "x", CorrectAnswers: 1, TotalQuestions: 2, GameMode: "color-tap"}
	if err := repo.Insert(other); err != nil {
		t.Fatalf("Insert other user: %v", err)
	}

	recent, err := repo.RecentByUser("u1", 3)
	if err != nil {
		t.Fatalf("RecentByUser: %v", err)
	}

	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want 3", len(recent))
	}
	for i, want := range []string{"s3", "s2", "s1"} {
		if recent[i].SessionID != want {
			t.Errorf("recent[%d].SessionID = %q, want %q", i, recent[i].SessionID, want)
		}
	}
}

func TestUserRepository_CreateAndLookups(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := &model.User{DeviceID: "device-abc", Username: "alice"}
	if err := repo.Create(user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == "" {
		t.Error("Create did not assign an id")
	}
	if user.LastSeen.IsZero() {
		t.Error("Create did not set last seen")
	}

	byDevice, err := repo.GetByDeviceID("device-abc")
	if err != nil {
		t.Fatalf("GetByDeviceID: %v", err)
	}
	if byDevice.ID != user.ID {
		t.Errorf("GetByDeviceID id = %q, want %q", byDevice.ID, user.ID)
	}

	byID, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("Username = %q, want %q", byID.Username, "alice")
	}
}

func TestUserRepository_DuplicateDeviceID(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	if err := repo.Create(&model.User{DeviceID: "device-abc", Username: "alice"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Create(&model.User{DeviceID: "device-abc", Username: "bob"})
	if !IsDuplicateKey(err) {
		t.Errorf("err = %v, want duplicate key", err)
	}
}

func TestUserRepository_UpdateAvatarURL(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := &model.User{DeviceID: "device-abc", Username: "alice"}
	if err := repo.Create(user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.UpdateAvatarURL(user.ID, "https://cdn.example/a.png"); err != nil {
		t.Fatalf("UpdateAvatarURL: %v", err)
	}

	got, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AvatarURL != "https://cdn.example/a.png" {
		t.Errorf("AvatarURL = %q, want updated value", got.AvatarURL)
	}
}
