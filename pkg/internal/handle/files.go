package handle

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/soumik183/instavault/pkg/context"
	"github.com/soumik183/instavault/pkg/internal/model"
	"github.com/soumik183/instavault/pkg/internal/registry"
	"github.com/soumik183/instavault/pkg/internal/service"
	"github.com/soumik183/instavault/pkg/internal/types"
	"github.com/soumik183/instavault/pkg/log"
)

// fileService 构造当前请求的文件生命周期服务.
func fileService(c *gin.Context) (*service.FileService, string, bool) {
	user, p, ok := userPool(c)
	if !ok {
		return nil, "", false
	}

	mgr := ctxPkg.GetManager(c.Request.Context())

	return service.NewFileService(p, mgr.Store), user, true
}

// UploadFile 处理 multipart 上传：自动挑选目标账号，失败时换账号重试.
func UploadFile(c *gin.Context) {
	user, p, ok := userPool(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(err))

		return
	}

	content, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(err))

		return
	}
	defer func() { _ = content.Close() }()

	mgr := ctxPkg.GetManager(c.Request.Context())
	svc := service.NewUploadService(p, mgr.Store)

	result, err := svc.Upload(c.Request.Context(), &service.UploadRequest{
		OriginalName: header.Filename,
		Size:         header.Size,
		MimeType:     uploadContentType(header.Filename, header.Header.Get("Content-Type")),
		Content:      content,
	})
	if err != nil {
		log.Logger().Error().Err(err).Str("user", user).Str("file", header.Filename).Msg("upload failed")
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusCreated, types.OK(result))
}

// ListFiles 列出用户的文件，支持类型、收藏过滤与排序.
func ListFiles(c *gin.Context) {
	svc, user, ok := fileService(c)
	if !ok {
		return
	}

	filter := registry.FileFilter{
		Type:     model.FileType(c.Query("type")),
		Favorite: c.Query("favorite") == "true",
		SortBy:   c.Query("sort_by"),
		SortAsc:  strings.EqualFold(c.Query("order"), "asc"),
	}

	infos, err := svc.List(c.Request.Context(), user, filter)
	if err != nil {
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(infos))
}

// GetFile 返回单个文件的元数据.
func GetFile(c *gin.Context) {
	svc, user, ok := fileService(c)
	if !ok {
		return
	}

	info, err := svc.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(info))
}

// DownloadFile 以附件形式流式返回文件内容.
func DownloadFile(c *gin.Context) {
	svc, user, ok := fileService(c)
	if !ok {
		return
	}

	reader, record, err := svc.Download(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		c.JSON(failStatus(err), types.Fail(err))

		return
	}
	defer func() { _ = reader.Close() }()

	c.Header("Content-Type", downloadContentType(record))
	c.Header("Content-Length", strconv.FormatInt(record.FileSize, 10))
	c.Header("Content-Disposition", "attachment; filename=\""+escapeFileName(record.OriginalName)+"\"")

	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Logger().Error().Err(err).Str("file", record.ID).Msg("stream download failed")
	}
}

// DeleteFile 删除文件：对象先删，元数据随后软删.
func DeleteFile(c *gin.Context) {
	svc, user, ok := fileService(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := svc.Delete(c.Request.Context(), user, id); err != nil {
		log.Logger().Error().Err(err).Str("user", user).Str("file", id).Msg("delete file failed")
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"id": id}))
}

// ToggleFileFavorite 反转收藏标记.
func ToggleFileFavorite(c *gin.Context) {
	svc, user, ok := fileService(c)
	if !ok {
		return
	}

	id := c.Param("id")

	favorite, err := svc.ToggleFavorite(c.Request.Context(), user, id)
	if err != nil {
		c.JSON(failStatus(err), types.Fail(err))

		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"id": id, "is_favorite": favorite}))
}

// uploadContentType 推断上传内容类型：header 优先，再按扩展名，最后退回二进制流.
func uploadContentType(fileName, headerType string) string {
	if headerType != "" {
		return headerType
	}

	if ext := filepath.Ext(fileName); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}

	return "application/octet-stream"
}

// downloadContentType 下载响应的内容类型.
func downloadContentType(record *model.FileRecord) string {
	if record.MimeType != "" {
		return record.MimeType
	}

	return "application/octet-stream"
}

// escapeFileName 简单转义文件名中的引号与分号等.
func escapeFileName(s string) string {
	replacer := strings.NewReplacer("\\", "_", "\"", "_", ";", "_", "\n", "_", "\r", "_")
	return replacer.Replace(s)
}
