package model

// Media 小节挂载的图片/视频/文档资源
// swagger:model Media
type Media struct {
	UUIDBase
	SectionID    uint    `gorm:"index;type:bigint unsigned;not null" json:"sectionId"`
	Title        string  `gorm:"size:200" json:"title"`
	URL          string  `gorm:"size:500;not null" json:"url"`
	ThumbnailURL string  `gorm:"size:500" json:"thumbnailUrl,omitempty"`
	MimeType     string  `gorm:"size:100" json:"mimeType"`
	SizeBytes    int64   `gorm:"default:0" json:"sizeBytes"`
	Duration     float64 `gorm:"default:0" json:"duration"` // 视频时长（秒），ffmpeg探测
	UploaderID   uint    `gorm:"index;type:bigint unsigned" json:"uploaderId"`
}

func (Media) TableName() string {
	return "media"
}
