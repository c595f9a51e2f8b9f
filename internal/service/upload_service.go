package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/optrack-next/internal/config"

	"github.com/google/uuid"
)

// 附件上传场景，决定落盘目录
var allowedUploadScenes = map[string]struct{}{
	"orders": {},
	"items":  {},
	"common": {},
}

// UploadService 附件上传服务
type UploadService struct {
	cfg *config.Config
}

// NewUploadService 创建附件上传服务实例
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{cfg: cfg}
}

// SaveFile 保存上传的附件，返回可访问的相对地址
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (string, error) {
	if file == nil {
		return "", ErrUploadInvalid
	}
	if file.Size > s.cfg.Upload.MaxSize {
		return "", ErrUploadTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.Upload.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.Upload.AllowedExtensions) {
			return "", ErrUploadTypeNotAllowed
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 读取文件头识别真实 MIME 类型
	buffer := make([]byte, 512)
	if _, err := src.Read(buffer); err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}
	contentType := http.DetectContentType(buffer)
	if len(s.cfg.Upload.AllowedTypes) > 0 && !isAllowedContentType(contentType, s.cfg.Upload.AllowedTypes) {
		return "", ErrUploadTypeNotAllowed
	}

	baseDir := strings.TrimSpace(s.cfg.Upload.Dir)
	if baseDir == "" {
		baseDir = "./uploads"
	}
	now := time.Now()
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	relPath := filepath.Join(normalizeUploadScene(scene), now.Format("2006"), now.Format("01"), filename)
	savePath := filepath.Join(baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return "/uploads/" + filepath.ToSlash(relPath), nil
}

func normalizeUploadScene(scene string) string {
	normalized := strings.ToLower(strings.TrimSpace(scene))
	if _, ok := allowedUploadScenes[normalized]; ok {
		return normalized
	}
	return "common"
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(ext, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}

func isAllowedContentType(contentType string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(contentType, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}
