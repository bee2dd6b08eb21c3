package command

import (
	"context"
	"fmt"
	"strings"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/user/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/auth"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/idgen"
	"github.com/tair/pos-ledger/pkg/logger"
)

func checkPassword(password string) error {
	if len(password) < domain.MinPasswordLength {
		return apperror.Validation("password must be at least %d characters", domain.MinPasswordLength)
	}
	return nil
}

// mutateUser applies fn to the user with id, then enforces the last-admin
// guard on the result
func mutateUser(ctx context.Context, repo domain.UserRepository, id string, fn func(u *domain.User) error) (*domain.User, error) {
	if id == "" {
		return nil, apperror.Validation("invalid user id")
	}

	var updated domain.User
	err := repo.Mutate(ctx, func(users *[]domain.User) error {
		before := domain.CountActiveAdmins(*users)
		var target *domain.User
		for i := range *users {
			if (*users)[i].ID == id {
				target = &(*users)[i]
				break
			}
		}
		if target == nil {
			return apperror.NotFound("user not found")
		}
		if err := fn(target); err != nil {
			return err
		}
		if before > 0 && domain.CountActiveAdmins(*users) == 0 {
			return apperror.New(apperror.ErrLastAdmin, "at least one active admin is required")
		}
		updated = *target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CreateUserCommand represents the command to create a user
type CreateUserCommand struct {
	Username string
	Name     string
	Password string
	Role     string
}

// CreateUserHandler handles user creation command
type CreateUserHandler struct {
	repo  domain.UserRepository
	audit auditdomain.Recorder
	clock dateutil.Clock
}

// NewCreateUserHandler creates a new create user handler
func NewCreateUserHandler(repo domain.UserRepository, audit auditdomain.Recorder, clock dateutil.Clock) *CreateUserHandler {
	return &CreateUserHandler{repo: repo, audit: audit, clock: clock}
}

// Handle executes the create user command
func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*domain.User, error) {
	username := strings.TrimSpace(cmd.Username)
	name := strings.TrimSpace(cmd.Name)
	if username == "" {
		return nil, apperror.Validation("username is required")
	}
	if name == "" {
		name = username
	}
	role := cmd.Role
	if role == "" {
		role = domain.RoleCashier
	}
	if !domain.ValidRole(role) {
		return nil, apperror.Validation("invalid role %q", cmd.Role)
	}
	if err := checkPassword(cmd.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	user := &domain.User{
		ID:           idgen.New(),
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	_ = h.audit.Record(ctx, auditdomain.ActionUserCreated, map[string]any{
		"userId":   user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
	logger.Info(ctx).Str("user_id", user.ID).Str("username", user.Username).Str("role", role).Msg("User created")

	return user, nil
}

// UpdateUserCommand changes profile fields. Nil fields are left unchanged.
type UpdateUserCommand struct {
	ID     string
	Name   *string
	Role   *string
	Active *bool
}

// UpdateUserHandler handles user update command
type UpdateUserHandler struct {
	repo  domain.UserRepository
	audit auditdomain.Recorder
	clock dateutil.Clock
}

// NewUpdateUserHandler creates a new update user handler
func NewUpdateUserHandler(repo domain.UserRepository, audit auditdomain.Recorder, clock dateutil.Clock) *UpdateUserHandler {
	return &UpdateUserHandler{repo: repo, audit: audit, clock: clock}
}

// Handle executes the update user command
func (h *UpdateUserHandler) Handle(ctx context.Context, cmd UpdateUserCommand) (*domain.User, error) {
	if cmd.Role != nil && !domain.ValidRole(*cmd.Role) {
		return nil, apperror.Validation("invalid role %q", *cmd.Role)
	}
	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) == "" {
		return nil, apperror.Validation("name is required")
	}

	now := h.clock.Now()
	user, err := mutateUser(ctx, h.repo, cmd.ID, func(u *domain.User) error {
		if cmd.Name != nil {
			u.Name = strings.TrimSpace(*cmd.Name)
		}
		if cmd.Role != nil {
			u.Role = *cmd.Role
		}
		if cmd.Active != nil {
			u.Active = *cmd.Active
		}
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = h.audit.Record(ctx, auditdomain.ActionUserUpdated, map[string]any{
		"userId":   user.ID,
		"username": user.Username,
		"role":     user.Role,
		"active":   user.Active,
	})
	return user, nil
}

// SetActive enables or disables an account
func (h *UpdateUserHandler) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	return h.Handle(ctx, UpdateUserCommand{ID: id, Active: &active})
}

// ChangePasswordCommand lets a user replace their own password
type ChangePasswordCommand struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

// ChangePasswordHandler handles password change and reset commands
type ChangePasswordHandler struct {
	repo  domain.UserRepository
	audit auditdomain.Recorder
	clock dateutil.Clock
}

// NewChangePasswordHandler creates a new change password handler
func NewChangePasswordHandler(repo domain.UserRepository, audit auditdomain.Recorder, clock dateutil.Clock) *ChangePasswordHandler {
	return &ChangePasswordHandler{repo: repo, audit: audit, clock: clock}
}

// Handle executes the change password command
func (h *ChangePasswordHandler) Handle(ctx context.Context, cmd ChangePasswordCommand) error {
	if err := checkPassword(cmd.NewPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(cmd.NewPassword)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	user, err := mutateUser(ctx, h.repo, cmd.UserID, func(u *domain.User) error {
		if !auth.CheckPassword(u.PasswordHash, cmd.CurrentPassword) {
			return apperror.New(apperror.ErrInvalidCredentials, "current password is incorrect")
		}
		u.PasswordHash = hash
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return err
	}

	_ = h.audit.Record(ctx, auditdomain.ActionUserUpdated, map[string]any{
		"userId":   user.ID,
		"username": user.Username,
		"change":   "password",
	})
	return nil
}

// Reset sets a new password without the current one
func (h *ChangePasswordHandler) Reset(ctx context.Context, userID, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	user, err := mutateUser(ctx, h.repo, userID, func(u *domain.User) error {
		u.PasswordHash = hash
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return err
	}

	_ = h.audit.Record(ctx, auditdomain.ActionUserUpdated, map[string]any{
		"userId":   user.ID,
		"username": user.Username,
		"change":   "password reset",
	})
	return nil
}

// DeleteUserCommand represents the command to delete a user
type DeleteUserCommand struct {
	ID string
}

// DeleteUserHandler handles user deletion command
type DeleteUserHandler struct {
	repo  domain.UserRepository
	audit auditdomain.Recorder
}

// NewDeleteUserHandler creates a new delete user handler
func NewDeleteUserHandler(repo domain.UserRepository, audit auditdomain.Recorder) *DeleteUserHandler {
	return &DeleteUserHandler{repo: repo, audit: audit}
}

// Handle executes the delete user command
func (h *DeleteUserHandler) Handle(ctx context.Context, cmd DeleteUserCommand) error {
	if cmd.ID == "" {
		return apperror.Validation("invalid user id")
	}

	var removed domain.User
	err := h.repo.Mutate(ctx, func(users *[]domain.User) error {
		idx := -1
		for i := range *users {
			if (*users)[i].ID == cmd.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperror.NotFound("user not found")
		}
		removed = (*users)[idx]
		if removed.IsActiveAdmin() && domain.CountActiveAdmins(*users) == 1 {
			return apperror.New(apperror.ErrLastAdmin, "cannot delete the last active admin")
		}
		*users = append((*users)[:idx], (*users)[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	_ = h.audit.Record(ctx, auditdomain.ActionUserDeleted, map[string]any{
		"userId":   removed.ID,
		"username": removed.Username,
	})
	logger.Info(ctx).Str("user_id", removed.ID).Str("username", removed.Username).Msg("User deleted")
	return nil
}

// SeedDefaultAdminHandler creates the first admin of an empty user store
type SeedDefaultAdminHandler struct {
	create *CreateUserHandler
	repo   domain.UserRepository
}

// NewSeedDefaultAdminHandler creates a new seed handler
func NewSeedDefaultAdminHandler(repo domain.UserRepository, create *CreateUserHandler) *SeedDefaultAdminHandler {
	return &SeedDefaultAdminHandler{create: create, repo: repo}
}

// Handle creates the admin when no users exist and reports whether it did
func (h *SeedDefaultAdminHandler) Handle(ctx context.Context, username, password string) (bool, error) {
	n, err := h.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := h.create.Handle(ctx, CreateUserCommand{
		Username: username,
		Name:     "Administrator",
		Password: password,
		Role:     domain.RoleAdmin,
	}); err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}

	logger.Warn(ctx).Str("username", username).Msg("Default admin account created; change its password")
	return true, nil
}
