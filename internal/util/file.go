package util

import (
	"mime"
	"path/filepath"
	"strings"
)

// HasAllowedExtension 只看扩展名（大小写不敏感），不信任客户端声明的 MIME
func HasAllowedExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

func AllowedExtensions(kind string) []string {
	switch kind {
	case UploadVideo:
		return AllowedVideoExtensions
	case UploadDocument:
		return AllowedDocumentExtensions
	case UploadImage:
		return AllowedImageExtensions
	}
	return nil
}

// MimeTypeByExtension 以扩展名推断存储时使用的 Content-Type
func MimeTypeByExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".mov":
		return "video/quicktime"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// SanitizeFilename 去掉路径和空格，保留原始文件名用于展示
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.ReplaceAll(name, " ", "-")
}
