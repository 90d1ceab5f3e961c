package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/service"
)

// AuthHandler handles HTTP requests for registration and sign-in.
type AuthHandler struct {
	accountService *service.AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

// CredentialsRequest is the HTTP request body for registration and sign-in.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is the HTTP response for a successful sign-in.
type SessionResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email and password are required"})
		return
	}

	session, err := h.accountService.Register(c.Request.Context(), service.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SessionResponse{Email: session.Email, Token: session.Token})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email and password are required"})
		return
	}

	session, err := h.accountService.Login(c.Request.Context(), service.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SessionResponse{Email: session.Email, Token: session.Token})
}
