package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cryptobulldev/userdash/internal/logging"
	"github.com/cryptobulldev/userdash/internal/netx"
	"github.com/cryptobulldev/userdash/internal/server/models"
	"github.com/cryptobulldev/userdash/internal/server/services"
)

const defaultMaxBodyBytes = 1 << 20

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	UserIDFromAccessToken(token string) (string, error)
}

type UserService interface {
	List(ctx context.Context, page, limit int, search string) ([]models.User, int, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, name, email, password string) (*models.User, error)
	Update(ctx context.Context, id string, ch services.UserChanges) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	auth         AuthService
	users        UserService
	log          logging.Logger
	maxBodyBytes int64
}

func NewHandler(auth AuthService, users UserService, log logging.Logger) *Handler {
	return &Handler{auth: auth, users: users, log: log.With("module", "httpapi"), maxBodyBytes: defaultMaxBodyBytes}
}

// Register mounts the routes under prefix ("" or e.g. "/api").
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/healthz", h.handleHealth)

	mux.HandleFunc("POST "+prefix+"/auth/register", h.handleRegister)
	mux.HandleFunc("POST "+prefix+"/auth/login", h.handleLogin)
	mux.HandleFunc("POST "+prefix+"/auth/refresh", h.handleRefresh)

	mux.Handle("GET "+prefix+"/users", h.requireAuth(http.HandlerFunc(h.handleListUsers)))
	mux.Handle("POST "+prefix+"/users", h.requireAuth(http.HandlerFunc(h.handleCreateUser)))
	mux.Handle("GET "+prefix+"/users/{id}", h.requireAuth(http.HandlerFunc(h.handleGetUser)))
	mux.Handle("PATCH "+prefix+"/users/{id}", h.requireAuth(http.HandlerFunc(h.handleUpdateUser)))
	mux.Handle("DELETE "+prefix+"/users/{id}", h.requireAuth(http.HandlerFunc(h.handleDeleteUser)))
}

// ---- handlers ----

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	netx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := netx.DecodeRequest(w, r, h.maxBodyBytes, &req); err != nil {
		netx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	_, pair, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, "auth.register", err)
		return
	}
	netx.WriteJSON(w, http.StatusCreated, toTokenResponse(pair))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := netx.DecodeRequest(w, r, h.maxBodyBytes, &req); err != nil {
		netx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		netx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, "auth.login", err)
		return
	}
	netx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := netx.DecodeRequest(w, r, h.maxBodyBytes, &req); err != nil {
		netx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	pair, err := h.auth.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeServiceError(w, r, "auth.refresh", err)
		return
	}
	netx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	list, total, err := h.users.List(r.Context(), page, limit, q.Get("search"))
	if err != nil {
		h.writeServiceError(w, r, "users.list", err)
		return
	}

	resp := usersResponse{Users: make([]userResponse, 0, len(list)), Total: total}
	for i := range list {
		resp.Users = append(resp.Users, toUserResponse(&list[i]))
	}
	netx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := netx.DecodeRequest(w, r, h.maxBodyBytes, &req); err != nil {
		netx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	u, err := h.users.Create(r.Context(), deref(req.Name), deref(req.Email), deref(req.Password))
	if err != nil {
		h.writeServiceError(w, r, "users.create", err)
		return
	}
	netx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, "users.get", err)
		return
	}
	netx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := netx.DecodeRequest(w, r, h.maxBodyBytes, &req); err != nil {
		netx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	u, err := h.users.Update(r.Context(), r.PathValue("id"), services.UserChanges{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, r, "users.update", err)
		return
	}
	netx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, "users.delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
