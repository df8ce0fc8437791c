package domain

import (
	"errors"
	"time"
)

// Type categorizes a notification.
type Type string

const (
	TypeInfo         Type = "info"
	TypeWarning      Type = "warning"
	TypeSuccess      Type = "success"
	TypeAnnouncement Type = "announcement"
)

// Priority orders notifications in the inbox.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var (
	ErrNotFound        = errors.New("notification: not found")
	ErrInvalidType     = errors.New("notification: invalid type")
	ErrInvalidPriority = errors.New("notification: invalid priority")
)

// Notification is a message for one user, or for everyone when ToUserID
// is nil (broadcast).
type Notification struct {
	ID         int        `db:"id" json:"id"`
	Title      string     `db:"title" json:"title"`
	Message    string     `db:"message" json:"message"`
	Type       Type       `db:"type" json:"type"`
	FromUserID *int       `db:"from_user_id" json:"fromUserId"`
	ToUserID   *int       `db:"to_user_id" json:"toUserId"`
	CompanyID  *int       `db:"company_id" json:"companyId"`
	AreaID     *int       `db:"area_id" json:"areaId"`
	Priority   Priority   `db:"priority" json:"priority"`
	Read       bool       `db:"read" json:"read"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	ReadAt     *time.Time `db:"read_at" json:"readAt"`
}

// ValidType reports whether t is a known notification type.
func ValidType(t Type) bool {
	switch t {
	case TypeInfo, TypeWarning, TypeSuccess, TypeAnnouncement:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
