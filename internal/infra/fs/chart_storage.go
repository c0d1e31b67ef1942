package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SavePNG writes data to dir/name.png through a temporary file so a reader never
// sees a partial image. It returns the final path.
func SavePNG(dir, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("refusing to write empty image")
	}
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(dir, name+".png")
	tempFilePath := filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temporary image file: %w", err)
	}

	if err := os.Rename(tempFilePath, filePath); err != nil {
		_ = os.Remove(tempFilePath)
		return "", fmt.Errorf("failed to rename temporary file to %s: %w", filePath, err)
	}
	return filePath, nil
}
