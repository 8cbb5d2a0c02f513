// services/cleanup.go - Background Data Hygiene
package services

import (
	"log"
	"time"
	"xavilearn/models"

	"gorm.io/gorm"
)

const (
	guestRetention    = 30 * 24 * time.Hour
	rejectedRetention = 90 * 24 * time.Hour
)

// CleanupService purges data nobody will come back for: abandoned guest
// accounts and old rejected evidences. Constructed once at startup next to the
// mission scheduler.
type CleanupService struct {
	db       *gorm.DB
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{
		db:       db,
		interval: 24 * time.Hour,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the cleanup loop in a background goroutine.
func (s *CleanupService) Start() {
	go func() {
		defer close(s.done)

		log.Println("🕐 Cleanup service started")
		s.runAll()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runAll()
			case <-s.stop:
				log.Println("Cleanup service stopped")
				return
			}
		}
	}()
}

// Stop signals the cleanup loop to exit and waits for it.
func (s *CleanupService) Stop() {
	close(s.stop)
	<-s.done
}

func (s *CleanupService) runAll() {
	if err := s.CleanupStaleGuests(); err != nil {
		log.Printf("Guest cleanup failed (will retry next run): %v", err)
	}
	if err := s.CleanupRejectedEvidences(); err != nil {
		log.Printf("Evidence cleanup failed (will retry next run): %v", err)
	}
}

// CleanupStaleGuests removes guest accounts with no completed activities that
// have been idle past the retention window. Registered users are never touched.
func (s *CleanupService) CleanupStaleGuests() error {
	cutoff := time.Now().UTC().Add(-guestRetention)

	var stale []models.User
	err := s.db.Where("is_guest = ? AND total_activities_completed = ? AND created_at < ?",
		true, 0, cutoff).
		Where("last_study_date IS NULL OR last_study_date < ?", cutoff).
		Find(&stale).Error
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	if err := s.db.Delete(&stale).Error; err != nil {
		return err
	}

	log.Printf("✅ Cleaned up %d stale guest accounts", len(stale))
	return nil
}

// CleanupRejectedEvidences drops rejected submissions past the retention
// window. Approved evidences are kept forever: achievement evaluators count them.
func (s *CleanupService) CleanupRejectedEvidences() error {
	cutoff := time.Now().UTC().Add(-rejectedRetention)

	res := s.db.Where("status = ? AND updated_at < ?", models.EvidenceRejected, cutoff).
		Delete(&models.Evidence{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("✅ Cleaned up %d old rejected evidences", res.RowsAffected)
	}
	return nil
}
