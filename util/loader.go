package util

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/nvr-ai/go-digits/images"
)

// ImageFile represents an image file found in a directory.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Format is the format implied by the file extension.
	Format images.ImageFormat
	// Index is the number at the end of the file name, -1 when there is none.
	Index int
}

// LoadDirectoryImageFiles lists the supported image files in a directory.
//
// Files are ordered by the number at the end of their name, so "digit-2.png"
// comes before "digit-10.png", then by name.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The image files, not including subdirectories.
// - error: Error if the directory cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := images.FormatFromPath(entry.Name())
		if err != nil {
			continue
		}
		files = append(files, ImageFile{
			Path:   filepath.Join(dir, entry.Name()),
			Format: format,
			Index:  trailingNumber(entry.Name()),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Index != files[j].Index {
			return files[i].Index < files[j].Index
		}
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// ExpandImagePaths replaces every directory in paths with the image files it
// contains. Other paths are kept as given.
//
// Arguments:
// - paths: Files and directories.
//
// Returns:
// - []string: The file paths.
// - error: Error if a directory cannot be read or holds no images.
func ExpandImagePaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			// Missing files are reported per file by the caller.
			out = append(out, path)
			continue
		}
		files, err := LoadDirectoryImageFiles(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no images in %s", path)
		}
		for _, f := range files {
			out = append(out, f.Path)
		}
	}
	return out, nil
}

// trailingNumber parses the digits right before the extension.
func trailingNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	end := len(base)
	start := end
	for start > 0 && unicode.IsDigit(rune(base[start-1])) {
		start--
	}
	if start == end {
		return -1
	}
	n, err := strconv.Atoi(base[start:end])
	if err != nil {
		return -1
	}
	return n
}
