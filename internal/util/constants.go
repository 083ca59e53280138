package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 文件上传相关常量
const (
	MimeVideo = "video/"
	MimeImage = "image/"
	MimeAudio = "audio/"
	MimePDF   = "application/pdf"
)

// AllowedMediaMimeTypes 小节媒体允许的 MIME 前缀/类型
var AllowedMediaMimeTypes = []string{MimeImage, MimeVideo, MimeAudio, MimePDF}
