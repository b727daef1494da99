package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"microlearning-go/internal/service"
	"microlearning-go/pkg/log"
)

// FileHandler 负责文件列表和状态查询。
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler 创建一个新的 FileHandler 实例。
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// ListFiles 返回全部文件记录，最新的在前。
func (h *FileHandler) ListFiles(c *gin.Context) {
	files, err := h.fileService.ListFiles(c.Request.Context())
	if err != nil {
		log.Error("ListFiles: failed to list files", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取文件列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// GetStatus 返回单个文件的状态、脚本和视频。
func (h *FileHandler) GetStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("file_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的文件 ID"})
		return
	}

	status, err := h.fileService.GetStatus(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("File with id %d not found.", id)})
			return
		}
		log.Error("GetStatus: failed to get file status", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取文件状态失败"})
		return
	}
	c.JSON(http.StatusOK, status)
}
