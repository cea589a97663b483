package env

const DefaultGalleryMaxBytes int64 = 5 << 20

type GalleryEnvironment struct {
	MaxBytes       int64  `validate:"required,min=1"`
	PlaceholderURL string `validate:"omitempty,url"`
}
