package ports

import (
	"context"

	"digo-dashboard/internal/features/users/domain"
)

// CreateUserInput carries the fields for registering a user.
type CreateUserInput struct {
	Name      string
	Email     string
	Password  string
	Role      string
	CompanyID *int
	AreaID    *int
}

// UpdateUserInput carries partial user updates. A non-nil Password is
// re-hashed.
type UpdateUserInput struct {
	Name      *string
	Email     *string
	Password  *string
	Role      *string
	CompanyID *int
	AreaID    *int
}

// LoginResult bundles the issued token with the authenticated user.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// UserService is the primary port for accounts and tenant reference data.
type UserService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetUser(ctx context.Context, id int) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id int, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id int) error

	ListCompanies(ctx context.Context) ([]domain.Company, error)
	GetCompany(ctx context.Context, id int) (*domain.Company, error)
	ListAreas(ctx context.Context, companyID *int) ([]domain.Area, error)
}

// UserRepository is the secondary port for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int) error
	TouchLastLogin(ctx context.Context, id int) error
}

// CompanyRepository is the secondary port for company reference data.
type CompanyRepository interface {
	List(ctx context.Context) ([]domain.Company, error)
	GetByID(ctx context.Context, id int) (*domain.Company, error)
}

// AreaRepository is the secondary port for area reference data.
type AreaRepository interface {
	List(ctx context.Context, companyID *int) ([]domain.Area, error)
}
