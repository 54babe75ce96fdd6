package controller

import (
	"ctchen222/reversi/internal/api/middleware"
	"ctchen222/reversi/internal/api/models"
	"ctchen222/reversi/internal/api/repository"
	"ctchen222/reversi/internal/api/response"
	"ctchen222/reversi/internal/api/service"
	"ctchen222/reversi/internal/game"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SaveController serves the save slots of the logged in user.
type SaveController struct {
	saveService service.SaveService
}

// NewSaveController creates a new SaveController.
func NewSaveController(saveService service.SaveService) *SaveController {
	return &SaveController{saveService: saveService}
}

// Create stores a snapshot under a name.
func (sc *SaveController) Create(c *gin.Context) {
	var req models.CreateSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	save, err := sc.saveService.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		sc.fail(c, err)
		return
	}
	response.SuccessResponse(c, save)
}

// List returns the user's saves without their snapshots.
func (sc *SaveController) List(c *gin.Context) {
	saves, err := sc.saveService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		sc.fail(c, err)
		return
	}
	list := make([]any, 0, len(saves))
	for _, s := range saves {
		list = append(list, s)
	}
	response.SuccessResponseList(c, list)
}

// Get returns one save including its snapshot.
func (sc *SaveController) Get(c *gin.Context) {
	save, err := sc.saveService.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		sc.fail(c, err)
		return
	}
	response.SuccessResponse(c, save)
}

// Delete removes a save.
func (sc *SaveController) Delete(c *gin.Context) {
	if err := sc.saveService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		sc.fail(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Save deleted"})
}

func (sc *SaveController) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrSaveNotFound):
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInvalidSnapshot):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "Save request failed", "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "internal error")
	}
}
