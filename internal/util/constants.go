package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	UploadVideo    = "video"
	UploadDocument = "document"
	UploadImage    = "image"
)

var (
	AllowedVideoExtensions    = []string{".mp4", ".webm", ".avi", ".mov"}
	AllowedDocumentExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".ppt", ".pptx"}
	AllowedImageExtensions    = []string{".jpg", ".jpeg", ".png", ".webp"}
)

// 缩略图最大尺寸
const (
	ThumbnailMaxWidth  = 1280
	ThumbnailMaxHeight = 720
)
