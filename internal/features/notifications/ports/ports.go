package ports

import (
	"context"

	"digo-dashboard/internal/features/notifications/domain"
)

// CreateInput carries a new notification. ToUserID nil means broadcast.
type CreateInput struct {
	Title      string
	Message    string
	Type       domain.Type
	FromUserID *int
	ToUserID   *int
	CompanyID  *int
	AreaID     *int
	Priority   domain.Priority
}

// NotificationService is the primary port for the user inbox.
type NotificationService interface {
	Create(ctx context.Context, in CreateInput) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
	Delete(ctx context.Context, id, userID int) error
}

// NotificationRepository is the secondary port for notification storage.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	// ListForUser returns the user's own notifications plus broadcasts,
	// newest first.
	ListForUser(ctx context.Context, userID int) ([]domain.Notification, error)
	GetByID(ctx context.Context, id int) (*domain.Notification, error)
	MarkRead(ctx context.Context, id int) error
	MarkAllRead(ctx context.Context, userID int) error
	Delete(ctx context.Context, id int) error
}
