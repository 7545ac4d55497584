package service

import (
	"strings"

	"github.com/soumik183/instavault/pkg/internal/model"
)

// fileTypeFromMime 从 MIME 类型推导粗粒度文件类型.
func fileTypeFromMime(mimeType string) model.FileType {
	mt := strings.ToLower(mimeType)

	switch {
	case strings.HasPrefix(mt, "image/"):
		return model.TypePhoto
	case strings.HasPrefix(mt, "video/"):
		return model.TypeVideo
	case strings.HasPrefix(mt, "application/pdf"),
		strings.Contains(mt, "document"),
		strings.Contains(mt, "text"),
		strings.Contains(mt, "sheet"),
		strings.Contains(mt, "presentation"):
		return model.TypeDocument
	default:
		return model.TypeOther
	}
}
