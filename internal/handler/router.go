package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"microlearning-go/internal/middleware"
)

// NewRouter 注册所有路由和中间件。
func NewRouter(uploadHandler *UploadHandler, fileHandler *FileHandler, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"*"}
	if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.POST("/upload", uploadHandler.Upload)
	r.GET("/files", fileHandler.ListFiles)
	r.GET("/status/:file_id", fileHandler.GetStatus)

	return r
}
