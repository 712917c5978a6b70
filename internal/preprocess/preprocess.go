// Package preprocess renders a cover photo into a ranked list of variants
// that give OCR engines several chances at noisy or unevenly lit text.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"

	"github.com/lehigh-university-libraries/bookid/internal/models"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes an uploaded image in any of the registered formats
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// EncodePNG serializes a variant for extractor backends that take bytes
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Variants returns the original image followed by the processed renderings,
// in the order extractors should try them.
func Variants(img image.Image) []models.ImageVariant {
	gray := Grayscale(img)
	enhanced := CLAHE(Bilateral(gray, 9, 75, 75), 3.0, 8)
	gaussian := AdaptiveThreshold(enhanced, 11, 2, AdaptiveGaussian)
	mean := AdaptiveThreshold(enhanced, 11, 2, AdaptiveMean)

	variants := []models.ImageVariant{
		{Name: "original", Image: img},
		{Name: "grayscale", Image: gray},
		{Name: "bilateral_clahe", Image: enhanced},
		{Name: "adaptive_gaussian", Image: gaussian},
		{Name: "adaptive_mean", Image: mean},
	}

	if rotated, ok := Deskew(gaussian); ok {
		variants = append(variants, models.ImageVariant{Name: "deskewed", Image: rotated})
	} else {
		slog.Debug("Skipping deskew, no foreground pixels")
	}

	variants = append(variants,
		models.ImageVariant{Name: "otsu", Image: Otsu(gray)},
		models.ImageVariant{Name: "morphology", Image: Erode(Dilate(gray, 1), 1)},
		models.ImageVariant{Name: "sharpened", Image: Filter2D(gray, sharpenKernel)},
		models.ImageVariant{Name: "gaussian_blur", Image: GaussianBlur(gray, 3)},
	)

	for i := range variants {
		variants[i].Index = i
	}
	return variants
}

// Grayscale converts img to 8-bit luma with bounds anchored at the origin
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
