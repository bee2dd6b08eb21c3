package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/tair/pos-ledger/internal/user/domain"
)

// GetUserHandler handles get user query
type GetUserHandler struct {
	repo domain.UserRepository
}

// NewGetUserHandler creates a new get user handler
func NewGetUserHandler(repo domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{repo: repo}
}

// Handle executes the get user query
func (h *GetUserHandler) Handle(ctx context.Context, id string) (*domain.UserView, error) {
	user, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// ListUsersQuery filters users by role; empty matches all
type ListUsersQuery struct {
	Role string
}

// ListUsersHandler handles list users query
type ListUsersHandler struct {
	repo domain.UserRepository
}

// NewListUsersHandler creates a new list users handler
func NewListUsersHandler(repo domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{repo: repo}
}

// Handle returns users ordered by username
func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) ([]domain.UserView, error) {
	users, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]domain.UserView, 0, len(users))
	for i := range users {
		if q.Role != "" && users[i].Role != q.Role {
			continue
		}
		out = append(out, users[i].View())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// UserStats counts accounts per role
type UserStats struct {
	TotalUsers   int `json:"totalUsers"`
	AdminCount   int `json:"adminCount"`
	ManagerCount int `json:"managerCount"`
	CashierCount int `json:"cashierCount"`
	ActiveUsers  int `json:"activeUsers"`
}

// Stats summarizes the user store
func (h *ListUsersHandler) Stats(ctx context.Context) (*UserStats, error) {
	users, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	stats := &UserStats{TotalUsers: len(users)}
	for _, u := range users {
		switch u.Role {
		case domain.RoleAdmin:
			stats.AdminCount++
		case domain.RoleManager:
			stats.ManagerCount++
		case domain.RoleCashier:
			stats.CashierCount++
		}
		if u.Active {
			stats.ActiveUsers++
		}
	}
	return stats, nil
}
