package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/logging"
	"github.com/dmitrijs2005/league-auth/internal/server/auth"
	"github.com/dmitrijs2005/league-auth/internal/server/metrics"
	"github.com/dmitrijs2005/league-auth/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AuthService is the subset of services.UserService the handlers need.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// Handler wires HTTP routes to the authentication service.
type Handler struct {
	users   AuthService
	tokens  *auth.TokenIssuer
	metrics metrics.Recorder
	logger  logging.Logger
}

func NewHandler(users AuthService, tokens *auth.TokenIssuer, m metrics.Recorder, l logging.Logger) *Handler {
	if m == nil {
		m = metrics.Nop{}
	}
	if l == nil {
		l = logging.Nop{}
	}
	return &Handler{users: users, tokens: tokens, metrics: m, logger: l.With("module", "http_handler")}
}

// NewRouter builds a gin engine with all routes. A nil metricsHandler
// leaves /metrics unregistered.
func NewRouter(h *Handler, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger))
	h.RegisterRoutes(router)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
	return router
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/refresh", h.refresh)
		authGroup.GET("/me", accessTokenMiddleware(h.tokens), h.me)
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Role         string `json:"role"`
}

type meResponse struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) register(c *gin.Context) {
	defer h.observe("register", time.Now())

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "register", bindingError(err))
		return
	}

	if err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		h.fail(c, "register", err)
		return
	}

	h.metrics.RecordOperation("register", "success")
	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
}

func (h *Handler) login(c *gin.Context) {
	defer h.observe("login", time.Now())

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "login", bindingError(err))
		return
	}

	pair, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	h.metrics.RecordOperation("login", "success")
	c.JSON(http.StatusOK, toResponse(pair))
}

func (h *Handler) refresh(c *gin.Context) {
	defer h.observe("refresh", time.Now())

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "refresh", bindingError(err))
		return
	}

	pair, err := h.users.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, "refresh", err)
		return
	}

	h.metrics.RecordOperation("refresh", "success")
	c.JSON(http.StatusOK, toResponse(pair))
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, meResponse{
		Username:  c.GetString(ctxUsername),
		Role:      c.GetString(ctxRole),
		ExpiresAt: c.GetTime(ctxExpiresAt).UTC(),
	})
}

func (h *Handler) fail(c *gin.Context, operation string, err error) {
	outcome := writeError(c, err)
	h.metrics.RecordOperation(operation, outcome)
	if outcome == internalFailure.outcome {
		h.logger.Error(c.Request.Context(), "request failed", "operation", operation, "error", err)
	}
}

func (h *Handler) observe(operation string, start time.Time) {
	h.metrics.RecordLatency(operation, time.Since(start))
}

func toResponse(p *services.TokenPair) AuthResponse {
	return AuthResponse{Token: p.AccessToken, RefreshToken: p.RefreshToken, Role: p.Role}
}
