package file

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	TempDir = ".temp"
)

// Storage manages the application data directory: temporary files created by
// functions and the deletion policy of paths living under it.
type Storage struct {
	basePath string
	logger   *slog.Logger
}

func NewStorage(basePath string, logger *slog.Logger) *Storage {
	return &Storage{
		basePath: basePath,
		logger:   logger.With("component", "file-storage"),
	}
}

func (fs *Storage) GetBasePath() string {
	return fs.basePath
}

func (fs *Storage) GetTempPath() string {
	return filepath.Join(fs.basePath, TempDir)
}

// NewTempFilePath returns a new unused file path with the given extension.
// The parent directory defaults to the storage temp directory.
func (fs *Storage) NewTempFilePath(parentDir string, ext string) (string, error) {
	if parentDir == "" {
		parentDir = fs.GetTempPath()
	}

	if ext == "" {
		ext = "tmp"
	}

	if err := os.MkdirAll(parentDir, 0750); err != nil {
		return "", errors.Wrapf(err, "failed to create directory %s", parentDir)
	}

	filename := uuid.NewString() + "." + strings.TrimPrefix(ext, ".")

	return filepath.Join(parentDir, filename), nil
}

// Contains reports whether the given path is located inside the storage base path.
func (fs *Storage) Contains(path string) bool {
	rel, err := filepath.Rel(fs.basePath, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// EnsureDirectoryExists creates the base directory structure if it doesn't exist
func (fs *Storage) EnsureDirectoryExists() error {
	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return errors.Wrapf(err, "failed to create base storage directory %s", fs.basePath)
	}

	path := fs.GetTempPath()
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, "failed to create storage subdirectory %s", path)
	}

	fs.logger.Info("storage directory structure initialized", "base_path", fs.basePath)
	return nil
}

// CleanupTempFiles removes temporary files older than the specified duration
func (fs *Storage) CleanupTempFiles(olderThan time.Duration) error {
	tempPath := fs.GetTempPath()
	cutoff := time.Now().Add(-olderThan)

	return filepath.Walk(tempPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return errors.WithStack(err)
		}

		if !info.IsDir() && info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				fs.logger.Warn("failed to remove temp file", "path", path, "error", err)
			} else {
				fs.logger.Debug("removed temp file", "path", path)
			}
		}

		return nil
	})
}

// GetFileInfo returns file information
func GetFileInfo(filePath string) (*FileInfo, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get file info for %s", filePath)
	}

	fileInfo := &FileInfo{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}

	if !info.IsDir() {
		fileInfo.MimeType = detectMimeType(filePath)
	}

	return fileInfo, nil
}

func detectMimeType(filePath string) string {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return "application/octet-stream"
	}

	return mtype.String()
}

type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
	IsDir    bool      `json:"is_dir"`
	MimeType string    `json:"mime_type,omitempty"`
}

const (
	TrashDir = ".trash"
)

func (fs *Storage) GetTrashPath() string {
	return filepath.Join(fs.basePath, TrashDir)
}

// Trash moves the given path into the storage trash directory and returns its
// new location.
func (fs *Storage) Trash(path string) (string, error) {
	dir := filepath.Join(fs.GetTrashPath(), uuid.NewString())
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", errors.Wrapf(err, "failed to create trash directory %s", dir)
	}

	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return "", errors.Wrapf(err, "failed to move %s to trash", path)
	}

	fs.logger.Debug("path moved to trash", "path", path, "trash_path", dest)

	return dest, nil
}
