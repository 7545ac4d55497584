package service

import (
	"testing"

	"github.com/soumik183/instavault/pkg/internal/model"
)

// TestFileTypeFromMime MIME 类型到粗粒度文件类型的映射.
func TestFileTypeFromMime(t *testing.T) {
	cases := []struct {
		mime string
		want model.FileType
	}{
		{"image/jpeg", model.TypePhoto},
		{"image/png", model.TypePhoto},
		{"video/mp4", model.TypeVideo},
		{"video/quicktime", model.TypeVideo},
		{"application/pdf", model.TypeDocument},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", model.TypeDocument},
		{"text/plain", model.TypeDocument},
		{"application/zip", model.TypeOther},
		{"", model.TypeOther},
	}

	for _, c := range cases {
		if got := fileTypeFromMime(c.mime); got != c.want {
			t.Errorf("fileTypeFromMime(%q) = %s, want %s", c.mime, got, c.want)
		}
	}
}
