package charts

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
)

// DataURLPrefix starts every encoded image.
const DataURLPrefix = "data:image/png;base64,"

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// encodePNG runs render into a buffer, stamps the DPI into the PNG and returns the
// bytes together with their data URL. The buffer is the only copy kept of the figure.
func encodePNG(dpi float64, render func(w io.Writer) error) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render png: %w", err)
	}
	if buf.Len() == 0 {
		return nil, "", errors.New("rendered png is empty")
	}

	data, err := withResolution(buf.Bytes(), dpi)
	if err != nil {
		return nil, "", err
	}
	return data, ToDataURL(data), nil
}

// ToDataURL base64-encodes png bytes into a data URL.
func ToDataURL(png []byte) string {
	return DataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

// withResolution inserts a pHYs chunk right after IHDR so viewers size the image
// for dpi. Neither go-chart nor gg writes one.
func withResolution(png []byte, dpi float64) ([]byte, error) {
	// signature + IHDR chunk (4 len + 4 type + 13 data + 4 crc)
	const ihdrEnd = 8 + 25
	if len(png) < ihdrEnd || !bytes.Equal(png[:8], pngSignature) || string(png[12:16]) != "IHDR" {
		return nil, errors.New("not a png stream")
	}

	ppm := uint32(math.Round(dpi / 0.0254))
	chunk := make([]byte, 0, 21)
	chunk = binary.BigEndian.AppendUint32(chunk, 9)
	chunk = append(chunk, "pHYs"...)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = append(chunk, 1) // unit: metre
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := make([]byte, 0, len(png)+len(chunk))
	out = append(out, png[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, png[ihdrEnd:]...)
	return out, nil
}
