package services

import (
	"testing"
	"time"
	"xavilearn/models"
)

func TestRunTick_DailyIdempotent(t *testing.T) {
	db := testDB(t)
	scheduler := NewMissionScheduler(db)

	for i := 0; i < 3; i++ {
		if err := scheduler.RunTick("daily"); err != nil {
			t.Fatalf("daily tick %d: %v", i, err)
		}
	}

	var count int64
	db.Model(&models.Mission{}).
		Where("type = ? AND is_active = ?", models.MissionDaily, true).
		Count(&count)
	if count != 1 {
		t.Fatalf("active daily missions = %d, want 1", count)
	}

	var mission models.Mission
	if err := db.Where("type = ?", models.MissionDaily).First(&mission).Error; err != nil {
		t.Fatalf("daily mission missing: %v", err)
	}
	wantStart := dayStart(time.Now().UTC())
	if !mission.StartDate.Equal(wantStart) {
		t.Errorf("start = %v, want %v", mission.StartDate, wantStart)
	}
	if !mission.EndDate.Equal(wantStart.Add(24 * time.Hour)) {
		t.Errorf("end = %v, want %v", mission.EndDate, wantStart.Add(24*time.Hour))
	}
	if mission.RequiredCount != dailyRequiredCount || mission.RewardAmount != dailyRewardCoins {
		t.Errorf("template mismatch: required=%d reward=%d", mission.RequiredCount, mission.RewardAmount)
	}
}

func TestRunTick_WeeklyIdempotent(t *testing.T) {
	db := testDB(t)
	scheduler := NewMissionScheduler(db)

	for i := 0; i < 3; i++ {
		if err := scheduler.RunTick("weekly"); err != nil {
			t.Fatalf("weekly tick %d: %v", i, err)
		}
	}

	var count int64
	db.Model(&models.Mission{}).
		Where("type = ? AND is_active = ?", models.MissionWeekly, true).
		Count(&count)
	if count != 1 {
		t.Fatalf("active weekly missions = %d, want 1", count)
	}

	var mission models.Mission
	if err := db.Where("type = ?", models.MissionWeekly).First(&mission).Error; err != nil {
		t.Fatalf("weekly mission missing: %v", err)
	}
	wantStart := weekStart(time.Now().UTC())
	if !mission.StartDate.Equal(wantStart) {
		t.Errorf("start = %v, want %v", mission.StartDate, wantStart)
	}
	if !mission.EndDate.Equal(wantStart.Add(7 * 24 * time.Hour)) {
		t.Errorf("end = %v, want week after %v", mission.EndDate, wantStart)
	}
}

func TestRunTick_ExpireThenRegenerate(t *testing.T) {
	db := testDB(t)
	scheduler := NewMissionScheduler(db)

	// A daily mission from a closed window.
	stale := &models.Mission{
		Title:         "Misión Diaria",
		Type:          models.MissionDaily,
		RequiredCount: dailyRequiredCount,
		RewardType:    models.RewardCoins,
		RewardAmount:  dailyRewardCoins,
		IsActive:      true,
		StartDate:     dayStart(time.Now().UTC()).AddDate(0, 0, -2),
		EndDate:       dayStart(time.Now().UTC()).AddDate(0, 0, -1),
	}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("failed to create stale mission: %v", err)
	}

	if err := scheduler.RunTick("expire"); err != nil {
		t.Fatalf("expire tick: %v", err)
	}
	// Second expire pass finds nothing to do.
	if err := scheduler.RunTick("expire"); err != nil {
		t.Fatalf("repeated expire tick: %v", err)
	}

	var reloaded models.Mission
	if err := db.First(&reloaded, stale.ID).Error; err != nil {
		t.Fatalf("stale mission was deleted, want soft retire: %v", err)
	}
	if reloaded.IsActive {
		t.Errorf("stale mission still active after expire tick")
	}

	// The daily tick now creates a fresh mission for the current window.
	if err := scheduler.RunTick("daily"); err != nil {
		t.Fatalf("daily tick: %v", err)
	}
	var count int64
	db.Model(&models.Mission{}).
		Where("type = ? AND is_active = ?", models.MissionDaily, true).
		Count(&count)
	if count != 1 {
		t.Errorf("active daily missions after regeneration = %d, want 1", count)
	}
}

func TestRunTick_UnknownKind(t *testing.T) {
	db := testDB(t)
	scheduler := NewMissionScheduler(db)

	if err := scheduler.RunTick("hourly"); err == nil {
		t.Fatal("unknown tick kind accepted")
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"monday_is_its_own_start",
			time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"wednesday",
			time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday_belongs_to_previous_monday",
			time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"next_monday_rolls_over",
			time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("weekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	db := testDB(t)
	scheduler := NewMissionScheduler(db)

	scheduler.Start()
	// The initial pass runs before the first ticker fire; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var count int64
		db.Model(&models.Mission{}).
			Where("type = ? AND is_active = ?", models.MissionDaily, true).
			Count(&count)
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not create the daily mission on startup")
		}
		time.Sleep(10 * time.Millisecond)
	}

	scheduler.Stop() // must not hang
}
