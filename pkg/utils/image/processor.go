package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"

	"github.com/chai2010/webp"
)

const (
	MaxImageSize = 5 * 1024 * 1024 // 5MB
)

// ErrInvalidImage marks rejections caused by the uploaded file itself
// (size, type, undecodable content), as opposed to processing failures.
var ErrInvalidImage = errors.New("invalid image")

var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ProcessImage validates and re-encodes an uploaded image. Whatever comes
// in (jpeg, png, webp) goes out as the same format after a full decode, so
// malformed files never reach storage.
func ProcessImage(file *multipart.FileHeader) (*bytes.Buffer, string, error) {
	if file.Size > MaxImageSize {
		return nil, "", fmt.Errorf("%w: file size too large, maximum is %d bytes", ErrInvalidImage, MaxImageSize)
	}

	contentType := file.Header.Get("Content-Type")
	if !AllowedImageTypes[contentType] {
		return nil, "", fmt.Errorf("%w: file type must be jpeg, png or webp", ErrInvalidImage)
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("could not open file: %v", err)
	}
	defer src.Close()

	var img image.Image
	var format string

	if contentType == "image/webp" {
		img, err = webp.Decode(src)
		format = "webp"
	} else {
		img, format, err = image.Decode(src)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: could not decode image: %v", ErrInvalidImage, err)
	}

	buf := new(bytes.Buffer)
	switch format {
	case "jpeg":
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: 85})
	case "png":
		err = png.Encode(buf, img)
	case "webp":
		err = webp.Encode(buf, img, &webp.Options{Quality: 85})
	default:
		return nil, "", fmt.Errorf("unsupported image format: %s", format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("could not encode image: %v", err)
	}

	return buf, format, nil
}
