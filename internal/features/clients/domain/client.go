package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a client does not exist.
var ErrNotFound = errors.New("client: not found")

// Client is a customer of one of the companies. EmailNotifications
// controls whether shipment status emails reach the client.
type Client struct {
	ID                 int       `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Email              string    `db:"email" json:"email"`
	Phone              string    `db:"phone" json:"phone"`
	ContactPerson      string    `db:"contact_person" json:"contactPerson"`
	Address            string    `db:"address" json:"address"`
	CompanyID          int       `db:"company_id" json:"companyId"`
	EmailNotifications bool      `db:"email_notifications" json:"emailNotifications"`
	IsActive           bool      `db:"is_active" json:"isActive"`
	Notes              string    `db:"notes" json:"notes"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}
