package utils

import (
	"fmt"
	"strings"
)

const (
	// MaxImageBytes is 20MB in bytes
	MaxImageBytes = 20 * 1024 * 1024
	// MaxImageDimension bounds reported width and height
	MaxImageDimension = 20000
)

// allowedFormats maps accepted image formats to their content type.
var allowedFormats = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"heic": "image/heic",
	"webp": "image/webp",
}

// ImageValidationError represents an image metadata validation error
type ImageValidationError struct {
	Code    string
	Message string
}

func (e *ImageValidationError) Error() string {
	return e.Message
}

// ImageMetadata is what a client reports after uploading a photo itself.
type ImageMetadata struct {
	URL      string
	PublicID string
	Width    int
	Height   int
	Format   string
	Bytes    int64
}

// NormalizeFormat lowercases a format and strips a leading dot.
func NormalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// ValidateImageMetadata checks the reference and descriptive fields of an uploaded image
func ValidateImageMetadata(meta ImageMetadata) error {
	if strings.TrimSpace(meta.URL) == "" && strings.TrimSpace(meta.PublicID) == "" {
		return &ImageValidationError{
			Code:    "MISSING_IMAGE_REFERENCE",
			Message: "Either url or public_id is required",
		}
	}

	if meta.URL != "" && !strings.HasPrefix(meta.URL, "https://") && !strings.HasPrefix(meta.URL, "http://") {
		return &ImageValidationError{
			Code:    "INVALID_IMAGE_URL",
			Message: "Image url must be an http(s) URL",
		}
	}

	if _, ok := allowedFormats[NormalizeFormat(meta.Format)]; !ok {
		return &ImageValidationError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s images are allowed", allowedFormatList()),
		}
	}

	if meta.Width < 0 || meta.Height < 0 || meta.Width > MaxImageDimension || meta.Height > MaxImageDimension {
		return &ImageValidationError{
			Code:    "INVALID_DIMENSIONS",
			Message: fmt.Sprintf("Image dimensions must be between 0 and %d pixels", MaxImageDimension),
		}
	}

	if meta.Bytes < 0 || meta.Bytes > MaxImageBytes {
		return &ImageValidationError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxImageBytes/(1024*1024)),
		}
	}

	return nil
}

// FormatForContentType returns the image format for an upload content type.
func FormatForContentType(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !strings.HasPrefix(ct, "image/") {
		return "", &ImageValidationError{
			Code:    "INVALID_CONTENT_TYPE",
			Message: "Content type must be an image type",
		}
	}

	format := strings.TrimPrefix(ct, "image/")
	if _, ok := allowedFormats[format]; !ok {
		return "", &ImageValidationError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s images are allowed", allowedFormatList()),
		}
	}
	return format, nil
}

func allowedFormatList() string {
	return "jpg, jpeg, png, heic and webp"
}
