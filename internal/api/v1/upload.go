package v1

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/matcapl/portco-board-assistant/internal/config"
)

// 上传校验错误；Error() 文本直接返回给客户端
var (
	ErrNoFile       = errors.New("No file uploaded")
	ErrFileTooLarge = errors.New("File too large")
	ErrBadExtension = errors.New("Only Excel files (.xlsx, .xls) are allowed")
	ErrBadMIMEType  = errors.New("Invalid MIME type for Excel file")
)

// validateUpload 校验文件名后缀、MIME 类型与大小
func validateUpload(fh *multipart.FileHeader, cfg config.UploadConfig) error {
	if fh == nil || fh.Filename == "" {
		return ErrNoFile
	}
	if !hasAllowedExtension(fh.Filename, cfg.AllowedExtensions) {
		return ErrBadExtension
	}
	if !containsFold(cfg.AllowedMIMETypes, mimeType(fh)) {
		return ErrBadMIMEType
	}
	if cfg.MaxBytes > 0 && fh.Size > cfg.MaxBytes {
		return ErrFileTooLarge
	}
	return nil
}

func hasAllowedExtension(filename string, allowed []string) bool {
	ext := filepath.Ext(filename)
	if ext == "" {
		return false
	}
	return containsFold(allowed, ext)
}

func mimeType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

func containsFold(items []string, v string) bool {
	for _, it := range items {
		if strings.EqualFold(it, v) {
			return true
		}
	}
	return false
}

// tempFileName 暂存文件名，去掉客户端提供的目录部分
func tempFileName(uploadID, filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return "pba_upload_" + uploadID + "_" + base
}

// multipartOverhead multipart 边界与表单字段的额外字节预算
const multipartOverhead = 1 << 20
