// services/scheduler.go - Time-Boxed Mission Generation & Expiry
package services

import (
	"fmt"
	"log"
	"time"
	"xavilearn/models"

	"gorm.io/gorm"
)

// Fixed templates for regenerated missions.
const (
	dailyRequiredCount  = 5
	dailyRewardCoins    = 10
	weeklyRequiredCount = 30
	weeklyRewardCoins   = 50
)

// MissionScheduler drives mission regeneration and expiry on fixed clock
// ticks, independent of request flow. It is constructed once at startup and
// owned by whoever wires it up; a failed tick is logged and retried on the
// next invocation, and every tick is idempotent so double-firing or running
// multiple instances creates no duplicate active missions.
type MissionScheduler struct {
	db       *gorm.DB
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewMissionScheduler(db *gorm.DB) *MissionScheduler {
	return &MissionScheduler{
		db:       db,
		interval: time.Hour,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the tick loop in a background goroutine. All tick kinds run on
// every interval; the window checks inside make the finer cadences correct.
func (s *MissionScheduler) Start() {
	go func() {
		defer close(s.done)

		log.Println("🕐 Mission scheduler started")
		s.runAll()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runAll()
			case <-s.stop:
				log.Println("Mission scheduler stopped")
				return
			}
		}
	}()
}

// Stop signals the tick loop to exit and waits for it.
func (s *MissionScheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *MissionScheduler) runAll() {
	for _, kind := range []string{"expire", "daily", "weekly"} {
		if err := s.RunTick(kind); err != nil {
			log.Printf("Scheduler %s tick failed (will retry next tick): %v", kind, err)
		}
	}
}

// RunTick executes one scheduler tick of the given kind: "daily", "weekly" or
// "expire". Also exposed through the maintenance API for manual runs.
func (s *MissionScheduler) RunTick(kind string) error {
	now := time.Now().UTC()
	switch kind {
	case "daily":
		return s.ensureDailyMission(now)
	case "weekly":
		return s.ensureWeeklyMission(now)
	case "expire":
		return s.expireStaleMissions(now)
	default:
		return fmt.Errorf("unknown scheduler tick kind %q", kind)
	}
}

// ensureDailyMission creates the DAILY mission for the current UTC day unless
// one is already active for this window.
func (s *MissionScheduler) ensureDailyMission(now time.Time) error {
	start := dayStart(now)
	return s.ensureMission(models.Mission{
		Title:         "Misión Diaria",
		Description:   "Completa 5 actividades hoy",
		Type:          models.MissionDaily,
		RequiredCount: dailyRequiredCount,
		RewardType:    models.RewardCoins,
		RewardAmount:  dailyRewardCoins,
		IsActive:      true,
		StartDate:     start,
		EndDate:       start.Add(24 * time.Hour),
	})
}

// ensureWeeklyMission creates the WEEKLY mission for the current ISO week
// unless one is already active for this window.
func (s *MissionScheduler) ensureWeeklyMission(now time.Time) error {
	start := weekStart(now)
	return s.ensureMission(models.Mission{
		Title:         "Misión Semanal",
		Description:   "Completa 30 actividades esta semana",
		Type:          models.MissionWeekly,
		RequiredCount: weeklyRequiredCount,
		RewardType:    models.RewardCoins,
		RewardAmount:  weeklyRewardCoins,
		IsActive:      true,
		StartDate:     start,
		EndDate:       start.Add(7 * 24 * time.Hour),
	})
}

func (s *MissionScheduler) ensureMission(mission models.Mission) error {
	var count int64
	err := s.db.Model(&models.Mission{}).
		Where("type = ? AND is_active = ? AND end_date > ?", mission.Type, true, mission.StartDate).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// The unique (type, start_date) window index backstops concurrent
	// scheduler instances; losing that race is not an error.
	if err := s.db.Create(&mission).Error; err != nil {
		log.Printf("Mission create for %s window %s skipped: %v",
			mission.Type, mission.StartDate.Format("2006-01-02"), err)
		return nil
	}

	log.Printf("✅ Created %s mission for window starting %s",
		mission.Type, mission.StartDate.Format("2006-01-02"))
	return nil
}

// expireStaleMissions soft-retires missions whose window has closed. Rows are
// kept because UserMission history references them.
func (s *MissionScheduler) expireStaleMissions(now time.Time) error {
	res := s.db.Model(&models.Mission{}).
		Where("is_active = ? AND end_date <= ?", true, now).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("✅ Expired %d missions", res.RowsAffected)
	}
	return nil
}

// dayStart returns 00:00 UTC of the day containing t.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekStart returns the Monday 00:00 UTC of the ISO week containing t.
func weekStart(t time.Time) time.Time {
	t = dayStart(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return t.AddDate(0, 0, 1-weekday)
}
