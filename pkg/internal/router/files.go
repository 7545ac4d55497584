package router

import (
	"github.com/gin-gonic/gin"

	"github.com/soumik183/instavault/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件操作相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	filesRoutes := g.Group("/files")
	{
		// 上传（multipart，自动挑选目标账号）
		filesRoutes.POST("", handle.UploadFile)
		// 列表/过滤
		filesRoutes.GET("", handle.ListFiles)

		// 单个文件操作
		singleGroup := filesRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.GetFile)
			singleGroup.DELETE("", handle.DeleteFile)
			singleGroup.GET("/download", handle.DownloadFile)
			singleGroup.POST("/favorite", handle.ToggleFileFavorite)
		}
	}
}
