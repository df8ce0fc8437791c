package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"digo-dashboard/internal/core/auth"
	"digo-dashboard/internal/features/users/domain"
	"digo-dashboard/internal/features/users/ports"
)

// UserServiceImpl implements ports.UserService.
type UserServiceImpl struct {
	users     ports.UserRepository
	companies ports.CompanyRepository
	areas     ports.AreaRepository
	issuer    *auth.TokenIssuer
	log       *zap.Logger
}

// NewUserService creates a new UserServiceImpl.
func NewUserService(users ports.UserRepository, companies ports.CompanyRepository, areas ports.AreaRepository, issuer *auth.TokenIssuer, log *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		users:     users,
		companies: companies,
		areas:     areas,
		issuer:    issuer,
		log:       log,
	}
}

// Login verifies credentials and issues a bearer token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service: failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Name, user.Email, user.Role, user.CompanyID, user.AreaID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to issue token: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to record last login", zap.Int("user_id", user.ID), zap.Error(err))
	}

	return &ports.LoginResult{Token: token, User: *user}, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id int) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

// CreateUser hashes the password and stores the account.
func (s *UserServiceImpl) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleViewer
	}
	if !domain.ValidRole(in.Role) {
		return nil, domain.ErrInvalidRole
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		CompanyID:    in.CompanyID,
		AreaID:       in.AreaID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id int, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to load user: %w", err)
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		if !domain.ValidRole(*in.Role) {
			return nil, domain.ErrInvalidRole
		}
		user.Role = *in.Role
	}
	if in.CompanyID != nil {
		user.CompanyID = in.CompanyID
	}
	if in.AreaID != nil {
		user.AreaID = in.AreaID
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("service: failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to update user: %w", err)
	}
	return user, nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to delete user: %w", err)
	}
	return nil
}

func (s *UserServiceImpl) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list companies: %w", err)
	}
	return companies, nil
}

func (s *UserServiceImpl) GetCompany(ctx context.Context, id int) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to get company: %w", err)
	}
	return company, nil
}

func (s *UserServiceImpl) ListAreas(ctx context.Context, companyID *int) ([]domain.Area, error) {
	areas, err := s.areas.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list areas: %w", err)
	}
	return areas, nil
}
