package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	portssvc "github.com/SscSPs/valutatrade_hub/internal/core/ports/services"
	"github.com/SscSPs/valutatrade_hub/internal/dto"
	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/gin-gonic/gin"
)

// authHandler handles registration and login.
type authHandler struct {
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
}

func newAuthHandler(us portssvc.UserSvcFacade, ts portssvc.TokenSvcFacade) *authHandler {
	return &authHandler{userService: us, tokenService: ts}
}

// registerAuthRoutes sets up the public authentication routes. loginLimit, if
// not nil, guards the login route only.
func registerAuthRoutes(r *gin.Engine, us portssvc.UserSvcFacade, ts portssvc.TokenSvcFacade, loginLimit gin.HandlerFunc) {
	h := newAuthHandler(us, ts)

	login := []gin.HandlerFunc{h.login}
	if loginLimit != nil {
		login = append([]gin.HandlerFunc{loginLimit}, login...)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login", login...)
		auth.POST("/register", h.register)
	}
}

// login godoc
// @Summary User login
// @Description Authenticates a user and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// Unknown user and wrong password look the same from outside.
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUnauthorized) {
			logger.Warn("Login failed", slog.String("username", req.Username))
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid username or password"})
			return
		}
		respondError(c, logger, err, "Failed to authenticate user")
		return
	}

	token, expiresAt, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		respondError(c, logger, err, "Failed to generate token")
		return
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, ExpiresAt: expiresAt, UserID: user.UserID})
}

// register godoc
// @Summary Register new user
// @Description Creates a new user with an empty portfolio.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "User Registration Info"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Username exists"
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, logger, err, "Failed to register user")
		return
	}

	logger.Info("User registered", slog.String("user_id", user.UserID))
	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}
