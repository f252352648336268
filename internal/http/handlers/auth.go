package handlers

import (
	"context"
	"crypto/hmac"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockhubapp/stockhub/internal/auth"
	"github.com/stockhubapp/stockhub/internal/config"
	"github.com/stockhubapp/stockhub/internal/domain/user"
	"github.com/stockhubapp/stockhub/internal/repo/postgres"
	"github.com/stockhubapp/stockhub/internal/security"
)

// regular member; role 1 is the administrator
const defaultRoleID = 2

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, email, passwordHash, firstName, lastName, organizationID string, roleID int) (user.User, error)
}

type RefreshTokenStore interface {
	Append(ctx context.Context, userID, tokenHash string) error
	GetLatest(ctx context.Context, userID string) (postgres.RefreshTokenRow, error)
}

type AuthHandler struct {
	users        UserStore
	refreshStore RefreshTokenStore
	jwt          *auth.Manager
	cfg          config.Config
}

func NewAuthHandler(users UserStore, refreshStore RefreshTokenStore, jwtManager *auth.Manager, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:        users,
		refreshStore: refreshStore,
		jwt:          jwtManager,
		cfg:          cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	UserID       string `json:"userID" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type RegisterRequest struct {
	FirstName      string `json:"firstName" binding:"required"`
	LastName       string `json:"lastName" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	OrganizationID string `json:"organizationID" binding:"required"`
}

// Login verifies credentials and issues both tokens. Unknown email and
// wrong password produce the identical message so accounts cannot be
// enumerated.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.OrganizationID, foundUser.RoleID)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	rawRefreshToken, err := h.jwt.NewRefreshToken(foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not generate refresh token")
		return
	}

	if err := h.refreshStore.Append(cctx, foundUser.ID, h.jwt.HashRefreshToken(rawRefreshToken)); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":           foundUser.ID,
		"token":        accessToken,
		"refreshToken": rawRefreshToken,
		"message":      "Authenticated",
	})
}

// Refresh re-issues an access token when the presented refresh token
// matches the most recently stored one for the user. The refresh token
// itself is not rotated.
func (h *AuthHandler) Refresh(ctx *gin.Context) {
	var req RefreshRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	row, err := h.refreshStore.GetLatest(cctx, req.UserID)

	if err != nil {
		RespondUnauthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	presented := h.jwt.HashRefreshToken(req.RefreshToken)

	if !hmac.Equal([]byte(presented), []byte(row.TokenHash)) {
		RespondUnauthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	// claims come from the current user record, so role changes take
	// effect on the next refresh
	foundUser, err := h.users.GetByID(cctx, req.UserID)

	if err != nil {
		RespondUnauthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.OrganizationID, foundUser.RoleID)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":   accessToken,
		"message": "Token refreshed",
	})
}

// Register creates a user inside an existing organization.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password, h.cfg.BcryptCost)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req.Email, hash, req.FirstName, req.LastName, req.OrganizationID, defaultRoleID)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":      u.ID,
		"message": "Registered",
	})
}

// Verify answers HEAD requests behind the auth middleware; reaching the
// handler at all means the token checked out.
func (h *AuthHandler) Verify(ctx *gin.Context) {
	ctx.Status(http.StatusOK)
}
