package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialchat/backend/internal/service"
)

// maxUploadSize caps attachment uploads at 10 MiB.
const maxUploadSize = 10 << 20

// UploadHandler exposes the generic file upload endpoint.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler creates a new UploadHandler instance
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// RegisterRoutes registers the upload API routes behind the auth gate
func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/upload", h.Upload)
}

func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file_upload")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file_upload is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		respondError(c, http.StatusBadRequest, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload")
		return
	}

	upload, err := h.uploads.Upload(
		c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, upload)
}
