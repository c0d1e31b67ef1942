package charts

import (
	"os"

	logging "strategy-charts/internal/infra/log"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// loadFont returns the TTF at path, or the embedded Go Regular font when path is
// empty or unusable. A nil result makes both renderers use their built-in faces.
func loadFont(path string) *truetype.Font {
	if path != "" {
		f, err := parseFontFile(path)
		if err == nil {
			logging.LogDebug("Loaded chart font", zap.String("path", path))
			return f
		}
		logging.LogWarn("Failed to load chart font, using embedded Go font",
			zap.String("path", path), zap.Error(err))
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		logging.LogWarn("Failed to parse embedded Go font", zap.Error(err))
		return nil
	}
	return f
}

func parseFontFile(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(data)
}

// face builds a font face of the given point size at dpi.
func face(f *truetype.Font, points, dpi float64) font.Face {
	if f == nil {
		return nil
	}
	return truetype.NewFace(f, &truetype.Options{Size: points, DPI: dpi, Hinting: font.HintingFull})
}
