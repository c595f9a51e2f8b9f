package admin

import (
	"errors"

	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UploadFile 附件上传（订单图纸、采购单等）
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "file missing", nil)
		return
	}
	scene := c.DefaultPostForm("scene", "common")

	url, err := h.UploadService.SaveFile(file, scene)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			respondError(c, response.CodeBadRequest, "file too large", nil)
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			respondError(c, response.CodeBadRequest, "file type not allowed", nil)
		case errors.Is(err, service.ErrUploadInvalid):
			respondError(c, response.CodeBadRequest, "file invalid", nil)
		default:
			respondError(c, response.CodeInternal, "upload failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"url":      url,
		"filename": file.Filename,
		"size":     file.Size,
	})
}
