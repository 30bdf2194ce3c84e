package service

import (
	"encoding/json"
	"log"

	"darra/internal/models"
	"darra/internal/repository"
)

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	email    *EmailService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, email *EmailService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, email: email}
}

// Notify persists a notification, then dispatches email off the request
// path. The dedup key makes redelivery a no-op: re-running a fanout writes
// nothing and sends nothing. Email failures are logged, never propagated.
func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}, dedupKey string) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	var key *string
	if dedupKey != "" {
		key = &dedupKey
	}
	inserted, err := s.repo.CreateIfAbsent(&models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Body:     body,
		Data:     dataJSON,
		DedupKey: key,
	})
	if err != nil {
		return err
	}
	if inserted {
		go s.sendEmail(userID, title, body)
	}
	return nil
}

// NotifyBulk fans a promotional notification out to many users. Per-user
// failures are logged and skipped.
func (s *NotificationService) NotifyBulk(userIDs []uint, notifType, title, body string, data map[string]interface{}) {
	for _, id := range userIDs {
		if err := s.Notify(id, notifType, title, body, data, ""); err != nil {
			log.Printf("[Notify] bulk notify user %d: %v", id, err)
		}
	}
}

func (s *NotificationService) sendEmail(userID uint, subject, body string) {
	if s.email == nil || !s.email.Enabled() {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u.Email == "" {
		return
	}
	if err := s.email.Send(u.Email, subject, body); err != nil {
		log.Printf("[Notify] email to user %d failed: %v", userID, err)
	}
}
