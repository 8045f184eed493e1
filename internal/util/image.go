package util

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const thumbnailQuality = 85

// EncodeThumbnailWebP 解码图片，等比缩小到 maxW x maxH 以内，输出 WebP
func EncodeThumbnailWebP(r io.Reader, filename string, maxW, maxH int) ([]byte, error) {
	var (
		img image.Image
		err error
	)

	if strings.ToLower(filepath.Ext(filename)) == ".webp" {
		img, err = webp.Decode(r)
	} else {
		img, err = imaging.Decode(r, imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if b.Dx() > maxW || b.Dy() > maxH {
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: thumbnailQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
