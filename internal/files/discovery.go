package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// JSONExt is the extension of every statistics file
const JSONExt = ".json"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Key returns the mapping key for a discovered entry: the directory name, or
// the file name without its .json extension
func (f FileInfo) Key() string {
	if f.IsDir {
		return f.Name
	}
	return strings.TrimSuffix(f.Name, JSONExt)
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindJSONFiles finds all JSON files in the specified directory, sorted by name
func (d *Discovery) FindJSONFiles(dir string) ([]FileInfo, error) {
	entries, err := d.FindJSONEntries(dir)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	for _, entry := range entries {
		if !entry.IsDir {
			files = append(files, entry)
		}
	}
	return files, nil
}

// FindJSONEntries lists the JSON files and subdirectories of dir, sorted by
// name. Hidden entries are skipped.
func (d *Discovery) FindJSONEntries(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.IsDir() && !strings.HasSuffix(name, JSONExt) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		fi := FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			ModTime: info.ModTime(),
			IsDir:   entry.IsDir(),
		}
		if !fi.IsDir {
			fi.Size = info.Size()
		}
		files = append(files, fi)
	}

	// ReadDir already sorts by file name; keys can differ from names
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Key() < files[j].Key()
	})

	return files, nil
}

// TotalSize returns the combined size of the JSON files below dir
func (d *Discovery) TotalSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(d.resolve(dir), func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), JSONExt) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return total, nil
}

// DirExists reports whether dir exists and is a directory
func (d *Discovery) DirExists(dir string) bool {
	info, err := os.Stat(d.resolve(dir))
	return err == nil && info.IsDir()
}
