package service

import (
	"context"
	"errors"
	"fmt"

	"digo-dashboard/internal/features/notifications/domain"
	"digo-dashboard/internal/features/notifications/ports"
)

// NotificationServiceImpl implements ports.NotificationService.
type NotificationServiceImpl struct {
	repo ports.NotificationRepository
}

// NewNotificationService creates a new NotificationServiceImpl.
func NewNotificationService(repo ports.NotificationRepository) *NotificationServiceImpl {
	return &NotificationServiceImpl{repo: repo}
}

// Create validates and stores a notification.
func (s *NotificationServiceImpl) Create(ctx context.Context, in ports.CreateInput) (*domain.Notification, error) {
	if in.Type == "" {
		in.Type = domain.TypeInfo
	}
	if !domain.ValidType(in.Type) {
		return nil, domain.ErrInvalidType
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityNormal
	}
	if !domain.ValidPriority(in.Priority) {
		return nil, domain.ErrInvalidPriority
	}

	n := &domain.Notification{
		Title:      in.Title,
		Message:    in.Message,
		Type:       in.Type,
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		CompanyID:  in.CompanyID,
		AreaID:     in.AreaID,
		Priority:   in.Priority,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("service: failed to create notification: %w", err)
	}
	return n, nil
}

// NotifyUser stores a direct notification for one user. Satisfies the
// notifier ports of other features.
func (s *NotificationServiceImpl) NotifyUser(ctx context.Context, userID int, title, message, notifType string) error {
	_, err := s.Create(ctx, ports.CreateInput{
		Title:    title,
		Message:  message,
		Type:     domain.Type(notifType),
		ToUserID: &userID,
	})
	return err
}

// ListForUser returns the user's notifications plus broadcasts.
func (s *NotificationServiceImpl) ListForUser(ctx context.Context, userID int) ([]domain.Notification, error) {
	notifications, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications read. Notifications
// addressed to someone else stay untouched and report not found.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id, userID int) error {
	if err := s.authorize(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification visible to the user.
func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID int) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("service: failed to mark notifications read: %w", err)
	}
	return nil
}

// Delete removes one of the user's notifications.
func (s *NotificationServiceImpl) Delete(ctx context.Context, id, userID int) error {
	if err := s.authorize(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to delete notification: %w", err)
	}
	return nil
}

func (s *NotificationServiceImpl) authorize(ctx context.Context, id, userID int) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to load notification: %w", err)
	}
	if n.ToUserID != nil && *n.ToUserID != userID {
		return domain.ErrNotFound
	}
	return nil
}
