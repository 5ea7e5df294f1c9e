package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wanderwise/account-service/internal/domain"
	"github.com/wanderwise/account-service/internal/usecase"
)

// accountUsecaser is the subset of AccountUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type accountUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	ConfirmEmail(ctx context.Context, userID, rawToken string) error
	ResendConfirmation(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type AccountHandler struct {
	accounts accountUsecaser
	logger   *slog.Logger
}

func NewAccountHandler(accounts accountUsecaser, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With("component", "account_handler"),
	}
}

type registerRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PhoneNumber    string `json:"phone_number" binding:"omitempty,min=7"`
	MarketingOptIn bool   `json:"marketing_opt_in"`
}

type userResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name,omitempty"`
	LastName        string     `json:"last_name,omitempty"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	EmailVerified   bool       `json:"email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PhoneNumber:     u.PhoneNumber,
		EmailVerified:   u.EmailVerified,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
	}
}

// POST /accounts/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), usecase.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhoneNumber:    req.PhoneNumber,
		MarketingOptIn: req.MarketingOptIn,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": errDuplicateEmail})
			return
		}
		if user != nil {
			// The account was committed but the confirmation email failed.
			// Report it so the caller knows to use resend.
			h.logger.ErrorContext(c.Request.Context(), "confirmation email dispatch failed",
				"user_id", user.ID, "error", err)
			c.JSON(http.StatusCreated, gin.H{
				"user":                toUserResponse(user),
				"confirmation_email":  "failed",
				"confirmation_resend": "/accounts/resend-confirmation",
			})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

// GET /accounts/confirm-email/:id/:token/
// Distinguishes unknown user, already verified (idempotent success), and
// invalid/expired token.
func (h *AccountHandler) ConfirmEmail(c *gin.Context) {
	userID := c.Param("id")
	rawToken := c.Param("token")

	err := h.accounts.ConfirmEmail(c.Request.Context(), userID, rawToken)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": msgConfirmed})
	case errors.Is(err, domain.ErrAlreadyVerified):
		c.JSON(http.StatusOK, gin.H{"message": msgAlreadyVerified})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	case errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusGone, gin.H{"error": errTokenInvalid})
	default:
		h.logger.ErrorContext(c.Request.Context(), "confirm email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

type resendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /accounts/resend-confirmation
// Always returns 202 with the same body so the endpoint never reveals
// whether an account exists.
func (h *AccountHandler) ResendConfirmation(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accounts.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "resend confirmation", "error", err)
	}

	c.JSON(http.StatusAccepted, gin.H{"message": msgResendAck})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /accounts/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		case errors.Is(err, domain.ErrNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": errEmailNotVerified})
		default:
			h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GET /accounts/me (requires Bearer JWT)
func (h *AccountHandler) Me(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := h.accounts.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get profile", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
