package controller

import (
	"ctchen222/reversi/internal/api/models"
	"ctchen222/reversi/internal/api/response"
	"ctchen222/reversi/internal/api/service"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserController serves registration, login and guest ids.
type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := uc.userService.Register(c.Request.Context(), &req); err != nil {
		uc.fail(c, "register", err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "User created successfully"})
}

// Login returns a bearer token for valid credentials.
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	token, err := uc.userService.Login(c.Request.Context(), &req)
	if err != nil {
		uc.fail(c, "login", err)
		return
	}
	response.SuccessResponse(c, models.LoginResponse{Token: token})
}

// GuestLogin hands out a player id without an account.
func (uc *UserController) GuestLogin(c *gin.Context) {
	playerID, err := uc.userService.GuestLogin(c.Request.Context())
	if err != nil {
		uc.fail(c, "guest login", err)
		return
	}
	response.SuccessResponse(c, models.GuestResponse{PlayerID: playerID})
}

func (uc *UserController) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		response.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "User request failed", "op", op, "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "could not "+op)
	}
}
