package gallery

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"os"

	// Target image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/crypto/blake2b"

	"github.com/BeatGlow/overlay/pixel"
)

// DecodeImage loads an image file into an RGBA buffer.
func DecodeImage(path string) (*pixel.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return pixel.FromImage(img), format, nil
}

// Digest identifies the pixel content of a buffer, including its dimensions.
func Digest(b *pixel.Buffer) string {
	h, _ := blake2b.New256(nil)

	var size [8]byte
	binary.BigEndian.PutUint32(size[0:], uint32(b.Rect.Dx()))
	binary.BigEndian.PutUint32(size[4:], uint32(b.Rect.Dy()))
	h.Write(size[:])

	w := b.Rect.Dx() * pixel.BytesPerPixel
	for y := b.Rect.Min.Y; y < b.Rect.Max.Y; y++ {
		i := b.PixOffset(b.Rect.Min.X, y)
		h.Write(b.Pix[i : i+w])
	}
	return hex.EncodeToString(h.Sum(nil))
}
