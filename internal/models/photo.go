package models

// Per-request and per-batch limits for presigned uploads.
const (
	MaxPresignFiles = 20
	MaxPhotoSize    = 100 * 1024 * 1024 // 100MB
)

type PresignFile struct {
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

type PresignRequest struct {
	FolderName string        `json:"folderName" validate:"required"`
	Files      []PresignFile `json:"files" validate:"required"`
}

// PresignResult reports the outcome for a single requested file. Reason is
// one of "limit", "duplicate" or "presign" when Success is false.
type PresignResult struct {
	Success    bool   `json:"success"`
	Err        bool   `json:"err"`
	FileName   string `json:"fileName"`
	Reason     string `json:"reason,omitempty"`
	PresignURL string `json:"presignUrl,omitempty"`
}

type PresignResponse struct {
	Success bool            `json:"success"`
	Err     bool            `json:"err"`
	Results []PresignResult `json:"results"`
}

type GalleryPage struct {
	Photos  []string `json:"photos"`
	LastKey string   `json:"lastKey,omitempty"`
	Total   int      `json:"total"`
}

type DeletePhotosRequest struct {
	EventID string   `json:"eventId" validate:"required"`
	Photos  []string `json:"photos" validate:"required,min=1,max=50,dive,min=1,max=200"`
}
