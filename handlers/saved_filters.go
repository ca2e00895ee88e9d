package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"http-codes-api/models"
	"http-codes-api/repository"
	"http-codes-api/types"

	"github.com/gin-gonic/gin"
)

const maxFilterNameLen = 16

type SavedFiltersHandler struct {
	filtersRepo *repository.SavedFiltersRepository
	codesRepo   *repository.HTTPCodesRepository
}

func NewSavedFiltersHandler(filtersRepo *repository.SavedFiltersRepository, codesRepo *repository.HTTPCodesRepository) *SavedFiltersHandler {
	return &SavedFiltersHandler{filtersRepo: filtersRepo, codesRepo: codesRepo}
}

// Create saves a new named filter for the authenticated owner.
// Responds 201 {message, result:true} on success and 400 {message,
// result:false} for missing mandatory fields, duplicate names, and
// unknown code references. Nothing is persisted on any rejection path.
func (h *SavedFiltersHandler) Create(c *gin.Context) {
	var req struct {
		Name  string   `json:"name"`
		Query string   `json:"query"`
		Codes []string `json:"codes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ResultResponse{Message: types.FilterMissingMandatory.Message(), Result: false})
		return
	}
	name := strings.TrimSpace(req.Name)
	query := strings.TrimSpace(req.Query)
	if name == "" || query == "" {
		c.JSON(http.StatusBadRequest, types.ResultResponse{Message: types.FilterMissingMandatory.Message(), Result: false})
		return
	}
	if utf8.RuneCountInString(name) > maxFilterNameLen {
		c.JSON(http.StatusBadRequest, types.ResultResponse{Message: "Name must be at most 16 characters", Result: false})
		return
	}

	userID := c.GetInt("userId")

	// Duplicate name is reported before bad code references when both
	// apply. The (user_id, name) constraint remains the race guard; this
	// pre-check only orders the outcomes.
	taken, err := h.filtersRepo.NameExists(userID, name)
	if err != nil {
		slog.Error("failed to check filter name", "err", err)
		c.JSON(http.StatusInternalServerError, types.ResultResponse{Message: "Please try again later", Result: false})
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, types.ResultResponse{Message: types.FilterDuplicateName.Message(), Result: false})
		return
	}

	if len(req.Codes) > 0 {
		ok, err := h.codesRepo.ExistsAll(req.Codes)
		if err != nil {
			slog.Error("failed to validate codes", "err", err)
			c.JSON(http.StatusInternalServerError, types.ResultResponse{Message: "Please try again later", Result: false})
			return
		}
		if !ok {
			c.JSON(http.StatusBadRequest, types.ResultResponse{Message: types.FilterInvalidCodes.Message(), Result: false})
			return
		}
	}

	if _, err := h.filtersRepo.Create(userID, name, query, req.Codes); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			c.JSON(http.StatusBadRequest, types.ResultResponse{Message: types.FilterDuplicateName.Message(), Result: false})
			return
		}
		slog.Error("failed to create filter", "err", err)
		c.JSON(http.StatusInternalServerError, types.ResultResponse{Message: "Please try again later", Result: false})
		return
	}
	c.JSON(http.StatusCreated, types.ResultResponse{Message: types.FilterSuccess.Message(), Result: true})
}

// List returns the authenticated owner's filters in creation order.
func (h *SavedFiltersHandler) List(c *gin.Context) {
	userID := c.GetInt("userId")
	filters, err := h.filtersRepo.GetAll(userID)
	if err != nil {
		slog.Error("failed to list filters", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Please try again later"})
		return
	}
	if filters == nil {
		filters = []*models.SavedFilter{}
	}
	c.JSON(http.StatusOK, filters)
}

// GetByID returns a filter only to its owner. A filter owned by someone
// else responds 404 exactly like a missing one; existence must not leak.
func (h *SavedFiltersHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Id Param Not found"})
		return
	}
	userID := c.GetInt("userId")
	filter, err := h.filtersRepo.GetByID(id, userID)
	if err != nil {
		slog.Error("failed to get filter", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Please try again later"})
		return
	}
	if filter == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
		return
	}
	c.JSON(http.StatusOK, filter)
}

// Update fully replaces a filter's name and code references; query and
// id are untouched. Responds 200 {errorMessage:"", result:true, filter}
// on success, 400 with an error message for invalid id (which covers
// foreign ownership), duplicate name, and unknown codes.
func (h *SavedFiltersHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, types.FilterUpdateResponse{ErrorMessage: "id param is mandatory", Result: false})
		return
	}
	var req struct {
		Name  string   `json:"name"`
		Codes []string `json:"codes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.FilterUpdateResponse{ErrorMessage: "Name is mandatory", Result: false})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, types.FilterUpdateResponse{ErrorMessage: "Name is mandatory", Result: false})
		return
	}
	if utf8.RuneCountInString(name) > maxFilterNameLen {
		c.JSON(http.StatusBadRequest, types.FilterUpdateResponse{ErrorMessage: "Name must be at most 16 characters", Result: false})
		return
	}

	userID := c.GetInt("userId")

	// The id/ownership check comes first: an update of a missing or
	// foreign filter is an invalid id regardless of what else is wrong
	// with the request.
	existing, err := h.filtersRepo.GetByID(id, userID)
	if err != nil {
		slog.Error("failed to get filter", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, types.FilterUpdateResponse{ErrorMessage: "Please try again later", Result: false})
		return
	}
	if existing == nil {
		c.JSON(http.StatusBadRequest, types.FilterUpdateResponse{ErrorMessage: types.FilterInvalidID.Message(), Result: false})
		return
	}

	taken, err := h.filtersRepo.NameUsedByOther(userID, name, id)
	if err != nil {
		slog.Error("failed to check filter name", "err", err)
		c.JSON(http.StatusInternalServerError, types.FilterUpdateResponse{ErrorMessage: "Please try again later", Result: false})
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, types.FilterUpdateResponse{ErrorMessage: types.FilterDuplicateName.Message(), Result: false})
		return
	}

	if len(req.Codes) > 0 {
		ok, err := h.codesRepo.ExistsAll(req.Codes)
		if err != nil {
			slog.Error("failed to validate codes", "err", err)
			c.JSON(http.StatusInternalServerError, types.FilterUpdateResponse{ErrorMessage: "Please try again later", Result: false})
			return
		}
		if !ok {
			c.JSON(http.StatusBadRequest, types.FilterUpdateResponse{ErrorMessage: types.FilterInvalidCodes.Message(), Result: false})
			return
		}
	}

	updated, err := h.filtersRepo.Update(id, userID, name, req.Codes)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			c.JSON(http.StatusBadRequest, types.FilterUpdateResponse{ErrorMessage: types.FilterDuplicateName.Message(), Result: false})
			return
		}
		slog.Error("failed to update filter", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, types.FilterUpdateResponse{ErrorMessage: "Please try again later", Result: false})
		return
	}
	if updated == nil {
		c.JSON(http.StatusBadRequest, types.FilterUpdateResponse{ErrorMessage: types.FilterInvalidID.Message(), Result: false})
		return
	}
	c.JSON(http.StatusOK, types.FilterUpdateResponse{ErrorMessage: "", Result: true, Filter: updated})
}

// Delete removes the owner's filter by id. Deleting something already
// gone (or never yours) is a 404, not an error.
func (h *SavedFiltersHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, types.ResultResponse{Message: "id param is mandatory", Result: false})
		return
	}
	userID := c.GetInt("userId")
	deleted, err := h.filtersRepo.Delete(id, userID)
	if err != nil {
		slog.Error("failed to delete filter", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, types.ResultResponse{Message: "Please try again later", Result: false})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, types.ResultResponse{Message: "Not Found", Result: false})
		return
	}
	c.JSON(http.StatusOK, types.ResultResponse{Message: "Deleted Successfully", Result: true})
}
