// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"microlearning-go/internal/service"
	"microlearning-go/pkg/log"
)

// UploadHandler 负责处理文件上传请求。
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadRequest 定义了上传接口的 multipart 表单。
type UploadRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

// Upload 接收一个 .txt 或 .pdf 文件，保存后立即返回，脚本在后台生成。
func (h *UploadHandler) Upload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件字段 'file'"})
		return
	}

	// 先校验扩展名，避免打开不被接受的文件
	if _, err := service.ValidateExtension(req.File.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := req.File.Open()
	if err != nil {
		log.Error("Upload: failed to open multipart file", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "无法读取上传文件"})
		return
	}
	defer f.Close()

	result, err := h.uploadService.Upload(c.Request.Context(), req.File.Filename, f)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFileType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error("Upload: failed to upload file", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
		return
	}

	c.JSON(http.StatusOK, result)
}
