package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"http-codes-api/initializers"
	"http-codes-api/models"
	"http-codes-api/pkg/pattern"
	"http-codes-api/repository"
	"http-codes-api/types"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

type HTTPCodesHandler struct {
	codesRepo *repository.HTTPCodesRepository
}

func NewHTTPCodesHandler(codesRepo *repository.HTTPCodesRepository) *HTTPCodesHandler {
	return &HTTPCodesHandler{codesRepo: codesRepo}
}

// List returns catalog records matching the "code" query parameter, or
// the whole catalog when the parameter is absent. A pattern that fails
// validation (non-digit/wildcard characters, more than 3 positions) is
// deliberately treated as "no filter" rather than "no results"; the
// search UI depends on that leniency.
func (h *HTTPCodesHandler) List(c *gin.Context) {
	var (
		codes []models.HTTPCode
		err   error
	)
	if norm, ok := pattern.Normalize(c.Query("code")); ok {
		codes, err = h.codesRepo.GetByPattern(norm)
	} else {
		codes, err = h.codesRepo.GetAll()
	}
	if err != nil {
		slog.Error("failed to query http codes", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Please try again later"})
		return
	}
	if codes == nil {
		codes = []models.HTTPCode{}
	}
	c.JSON(http.StatusOK, codes)
}

func (h *HTTPCodesHandler) Get(c *gin.Context) {
	id := c.Param("id")
	code, err := h.codesRepo.GetByID(id)
	if err != nil {
		slog.Error("failed to get http code", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Please try again later"})
		return
	}
	if code == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
		return
	}
	c.JSON(http.StatusOK, code)
}

// GetImage resolves the image for a code: a presigned URL when an object
// has been stored for it, otherwise the seeded external image reference.
func (h *HTTPCodesHandler) GetImage(c *gin.Context) {
	id := c.Param("id")
	code, err := h.codesRepo.GetByID(id)
	if err != nil {
		slog.Error("failed to get http code", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Please try again later"})
		return
	}
	if code == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
		return
	}
	if initializers.HasStoredImage(c.Request.Context(), code.ID) {
		url, err := initializers.GenerateImageURL(code.ID, code.Code)
		if err != nil {
			slog.Error("failed to presign image url", "id", id, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Please try again later"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
		return
	}
	if code.Image == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": code.Image})
}

// UploadImage stores an image object for a code. The MIME type is
// sniffed from content, never trusted from the client header.
func (h *HTTPCodesHandler) UploadImage(c *gin.Context) {
	id := c.Param("id")
	code, err := h.codesRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "Please try again later"))
		return
	}
	if code == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Not Found"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, initializers.Conf.MaxSize)

	file, err := c.FormFile("file")
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, types.NewErrorResponse(types.ErrorCodeValidation, "file size exceeds the limit"))
			return
		}
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "file is required"))
		return
	}

	sniff, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "cannot open uploaded file"))
		return
	}
	mt, detectErr := mimetype.DetectReader(sniff)
	_ = sniff.Close()
	if detectErr != nil || mt == nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "failed to detect file type"))
		return
	}
	detectedCT := strings.Split(mt.String(), ";")[0]
	if err := initializers.CheckImageAllowed(file.Size, detectedCT); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "cannot open uploaded file"))
		return
	}
	defer src.Close()
	if err := initializers.PutImage(c.Request.Context(), code.ID, src, file.Size, detectedCT); err != nil {
		slog.Error("failed to store image", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "Please try again later"))
		return
	}
	if err := h.codesRepo.SetImage(code.ID, initializers.ImageRef(code.ID)); err != nil {
		slog.Error("failed to update image reference", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "Please try again later"))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"id": code.ID}))
}
