package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"xkcdfetch/pkg/comic"
	"xkcdfetch/pkg/logger"
)

// Store persists the comic collection and the downloaded images in one
// cache directory.
type Store struct {
	dir      string
	dataPath string
	logger   logger.Logger
}

// NewStore creates the cache directory and an empty data file when missing.
func NewStore(dir, dataFile string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	s := &Store{
		dir:      dir,
		dataPath: filepath.Join(dir, dataFile),
		logger:   log.WithField("component", "storage"),
	}

	f, err := os.OpenFile(s.dataPath, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create data file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close data file: %w", err)
	}

	return s, nil
}

// Load reads the data file. Records whose image has disappeared from the cache
// directory are dropped so the next archive merge re-inserts them as
// placeholders.
func (s *Store) Load() (comic.Collection, error) {
	file, err := os.Open(s.dataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(comic.Collection), nil
		}
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	records, err := comic.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.dataPath, err)
	}

	coll := make(comic.Collection, len(records))
	dropped := 0
	for _, c := range records {
		if c.HasDetail() && !s.HasImage(c.ImageName) {
			s.logger.DebugWithFields("Discarding record with missing image", map[string]interface{}{
				"number": c.Number,
				"image":  c.ImageName,
			})
			dropped++
			continue
		}
		coll[c.Number] = c
	}

	s.logger.DebugWithFields("Cache loaded", map[string]interface{}{
		"records": len(coll),
		"dropped": dropped,
	})
	return coll, nil
}

// Save rewrites the data file atomically in ascending number order.
func (s *Store) Save(coll comic.Collection) error {
	file, err := os.CreateTemp(s.dir, ".comic-data-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary data file: %w", err)
	}
	tempPath := file.Name()

	if err := comic.Encode(file, coll); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	// Ensure data is written to disk
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync data file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close data file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set data file mode: %w", err)
	}

	// Atomically replace the old data file
	if err := os.Rename(tempPath, s.dataPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	s.logger.DebugWithFields("Cache saved", map[string]interface{}{
		"records": len(coll),
		"path":    s.dataPath,
	})
	return nil
}

// HasImage reports whether the named image is present in the cache directory.
func (s *Store) HasImage(name string) bool {
	if validImageName(name) != nil {
		return false
	}
	info, err := os.Stat(s.ImagePath(name))
	return err == nil && info.Mode().IsRegular()
}

// SaveImage writes image data through a temporary file so a partial download
// never looks like a cached image.
func (s *Store) SaveImage(name string, data []byte) error {
	if err := validImageName(name); err != nil {
		return err
	}

	out, err := os.CreateTemp(s.dir, ".image-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save image data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to set image mode: %w", err)
	}

	if err := os.Rename(tempFile, s.ImagePath(name)); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	s.logger.DebugWithFields("Image saved", map[string]interface{}{
		"image": name,
		"bytes": len(data),
	})
	return nil
}

// ImagePath returns where the named image lives in the cache directory.
func (s *Store) ImagePath(name string) string {
	return filepath.Join(s.dir, name)
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// DataPath returns the path of the record file.
func (s *Store) DataPath() string {
	return s.dataPath
}

func validImageName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid image name %q", name)
	}
	return nil
}
