// Package util - Batch input helpers.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageExtensions are the file extensions treated as images, lower case.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
}

// Name returns the base name of the file.
func (f ImageFile) Name() string {
	return filepath.Base(f.Path)
}

// ListImageFiles returns the paths of the image files directly inside dir, sorted by name.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []string: The image paths.
// - error: Error if the directory cannot be read.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ImageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file, sorted by name.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	paths, err := ListImageFiles(dir)
	if err != nil {
		return nil, err
	}

	images := make([]ImageFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		images = append(images, ImageFile{Path: path, Data: data})
	}
	return images, nil
}
