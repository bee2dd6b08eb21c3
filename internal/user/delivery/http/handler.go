package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/pos-ledger/internal/httpx"
	"github.com/tair/pos-ledger/internal/user/domain"
	"github.com/tair/pos-ledger/internal/user/usecase/command"
	"github.com/tair/pos-ledger/internal/user/usecase/query"
	"github.com/tair/pos-ledger/pkg/apperror"
)

// UserHandler handles HTTP requests for authentication and users
type UserHandler struct {
	// Command handlers
	loginHandler    *command.LoginUserHandler
	logoutHandler   *command.LogoutUserHandler
	createHandler   *command.CreateUserHandler
	updateHandler   *command.UpdateUserHandler
	passwordHandler *command.ChangePasswordHandler
	deleteHandler   *command.DeleteUserHandler

	// Query handlers
	getUserHandler *query.GetUserHandler
	listHandler    *query.ListUsersHandler

	gate         *httpx.Gate
	metrics      *httpx.Metrics
	loginLimiter *httpx.RateLimiter
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	loginHandler *command.LoginUserHandler,
	logoutHandler *command.LogoutUserHandler,
	createHandler *command.CreateUserHandler,
	updateHandler *command.UpdateUserHandler,
	passwordHandler *command.ChangePasswordHandler,
	deleteHandler *command.DeleteUserHandler,
	getUserHandler *query.GetUserHandler,
	listHandler *query.ListUsersHandler,
	gate *httpx.Gate,
	metrics *httpx.Metrics,
	loginLimiter *httpx.RateLimiter,
) *UserHandler {
	return &UserHandler{
		loginHandler:    loginHandler,
		logoutHandler:   logoutHandler,
		createHandler:   createHandler,
		updateHandler:   updateHandler,
		passwordHandler: passwordHandler,
		deleteHandler:   deleteHandler,
		getUserHandler:  getUserHandler,
		listHandler:     listHandler,
		gate:            gate,
		metrics:         metrics,
		loginLimiter:    loginLimiter,
	}
}

// RegisterRoutes registers all auth and user routes
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	anyRole := h.gate.Require()
	admin := h.gate.Require(domain.RoleAdmin)

	// Public routes
	router.HandleFunc("/api/auth/login", h.metrics.Wrap("/api/auth/login", h.loginLimiter.Wrap(h.Login))).Methods("POST")
	router.HandleFunc("/api/auth/logout", h.metrics.Wrap("/api/auth/logout", h.Logout)).Methods("POST")

	// Authenticated routes
	router.HandleFunc("/api/auth/me", h.metrics.Wrap("/api/auth/me", anyRole(h.Me))).Methods("GET")
	router.HandleFunc("/api/auth/password", h.metrics.Wrap("/api/auth/password", anyRole(h.ChangePassword))).Methods("PUT")

	// Admin routes
	router.HandleFunc("/api/users", h.metrics.Wrap("/api/users", admin(h.ListUsers))).Methods("GET")
	router.HandleFunc("/api/users", h.metrics.Wrap("/api/users", admin(h.CreateUser))).Methods("POST")
	router.HandleFunc("/api/users/stats", h.metrics.Wrap("/api/users/stats", admin(h.Stats))).Methods("GET")
	router.HandleFunc("/api/users/{id}", h.metrics.Wrap("/api/users/{id}", admin(h.GetUser))).Methods("GET")
	router.HandleFunc("/api/users/{id}", h.metrics.Wrap("/api/users/{id}", admin(h.UpdateUser))).Methods("PUT")
	router.HandleFunc("/api/users/{id}", h.metrics.Wrap("/api/users/{id}", admin(h.DeleteUser))).Methods("DELETE")
	router.HandleFunc("/api/users/{id}/active", h.metrics.Wrap("/api/users/{id}/active", admin(h.SetActive))).Methods("PATCH")
	router.HandleFunc("/api/users/{id}/password", h.metrics.Wrap("/api/users/{id}/password", admin(h.ResetPassword))).Methods("PUT")
}

// Login godoc
// @Summary User login
// @Description Authenticate and open the terminal session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string,rememberMe=bool} true "Login credentials"
// @Success 200 {object} object{success=bool,data=object{token=string,user=object,expiresAt=string}}
// @Failure 401 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/auth/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	response, err := h.loginHandler.Handle(r.Context(), command.LoginUserCommand{
		Username:   req.Username,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondOK(w, http.StatusOK, "Login successful", response)
}

// Logout godoc
// @Summary User logout
// @Description Close the terminal session
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Router /api/auth/logout [post]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := httpx.BearerToken(r); ok {
		if err := h.logoutHandler.Handle(r.Context(), token); err != nil {
			httpx.RespondError(w, r, err)
			return
		}
	}
	httpx.RespondMessage(w, http.StatusOK, "Logged out")
}

// Me godoc
// @Summary Current user
// @Description Profile of the logged in user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/auth/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		httpx.RespondError(w, r, apperror.New(apperror.ErrSessionExpired, "not logged in"))
		return
	}

	user, err := h.getUserHandler.Handle(r.Context(), principal.UserID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", user)
}

// ChangePassword handles PUT /api/auth/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		httpx.RespondError(w, r, apperror.New(apperror.ErrSessionExpired, "not logged in"))
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.passwordHandler.Handle(r.Context(), command.ChangePasswordCommand{
		UserID:          principal.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondMessage(w, http.StatusOK, "Password changed successfully")
}

// ListUsers godoc
// @Summary List users
// @Description List every account, optionally by role (admin only)
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param role query string false "Role filter"
// @Success 200 {object} object{success=bool,data=[]object}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.listHandler.Handle(r.Context(), query.ListUsersQuery{Role: r.URL.Query().Get("role")})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", users)
}

// Stats handles GET /api/users/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.listHandler.Stats(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", stats)
}

// CreateUser godoc
// @Summary Create user
// @Description Create an account (admin only)
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{username=string,name=string,password=string,role=string} true "New account"
// @Success 201 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.createHandler.Handle(r.Context(), command.CreateUserCommand{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusCreated, "User created successfully", user.View())
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserHandler.Handle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", user)
}

// UpdateUser handles PUT /api/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   *string `json:"name"`
		Role   *string `json:"role"`
		Active *bool   `json:"active"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.updateHandler.Handle(r.Context(), command.UpdateUserCommand{
		ID:     mux.Vars(r)["id"],
		Name:   req.Name,
		Role:   req.Role,
		Active: req.Active,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "User updated successfully", user.View())
}

// SetActive handles PATCH /api/users/{id}/active
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.updateHandler.SetActive(r.Context(), mux.Vars(r)["id"], req.Active)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "User status updated", user.View())
}

// ResetPassword handles PUT /api/users/{id}/password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.passwordHandler.Reset(r.Context(), mux.Vars(r)["id"], req.Password); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondMessage(w, http.StatusOK, "Password reset successfully")
}

// DeleteUser godoc
// @Summary Delete user
// @Description Delete an account; the last active admin cannot be removed (admin only)
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.deleteHandler.Handle(r.Context(), command.DeleteUserCommand{ID: mux.Vars(r)["id"]}); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondMessage(w, http.StatusOK, "User deleted successfully")
}
