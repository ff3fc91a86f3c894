package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sentinelshield/internal/service"
)

type MediaHandler interface {
	AnalyzeMedia(c *gin.Context)
}

type mediaHandler struct {
	svc    ModerationService
	logger *zap.Logger
}

func NewMediaHandler(svc ModerationService, logger *zap.Logger) MediaHandler {
	return &mediaHandler{svc: svc, logger: logger}
}

// AnalyzeMedia handles POST /analyze-media
//
// Multipart form fields: optional "image_file", optional "audio_file",
// required "user_id", "context" defaulting to "image". An unreadable
// file skips that modality; the remaining ones are still analyzed.
func (h *mediaHandler) AnalyzeMedia(c *gin.Context) {
	userID := c.PostForm("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	mediaContext := c.DefaultPostForm("context", "image")
	mediaType := "image"
	if mediaContext == "video" {
		mediaType = "video"
	}

	image := h.readFormFile(c, "image_file")
	audio := h.readFormFile(c, "audio_file")
	if image == nil && audio == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no media provided: expected image_file and/or audio_file"})
		return
	}

	analysis, err := h.svc.AnalyzeMedia(c.Request.Context(), service.MediaRequest{
		UserID:    userID,
		MediaType: mediaType,
		Image:     image,
		Audio:     audio,
	})
	if err != nil {
		h.logger.Error("Failed to analyze media", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze media"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// readFormFile returns the file's bytes, or nil when the field is absent
// or unreadable (logged, modality skipped).
func (h *mediaHandler) readFormFile(c *gin.Context, field string) []byte {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if err != http.ErrMissingFile {
			h.logger.Warn("Failed to access uploaded file, skipping modality",
				zap.String("field", field), zap.Error(err))
		}
		return nil
	}

	data, err := readAll(fileHeader)
	if err != nil {
		h.logger.Warn("Failed to read uploaded file, skipping modality",
			zap.String("field", field), zap.Error(err))
		return nil
	}
	return data
}

func readAll(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
