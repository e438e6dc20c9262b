package filestorage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/schooldir/internal/pkg/logger"
)

var safeExt = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

// LocalStorage keeps transcoded images in a web-servable directory and
// staged uploads in a separate scratch directory.
type LocalStorage struct {
	imageDir  string // filesystem directory for public images
	urlPrefix string // root-relative URL prefix, e.g. /schoolImages
	tempDir   string // scratch directory for uploads awaiting transcoding
	now       func() time.Time
}

// NewLocalStorage creates both directories if needed.
func NewLocalStorage(imageDir, urlPrefix, tempDir string) (*LocalStorage, error) {
	for _, dir := range []string{imageDir, tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().Err(err).Str("path", dir).Msg("Failed to create storage directory")
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}
	logger.Info().Str("images", imageDir).Str("temp", tempDir).Msg("Local storage directories ensured")

	return &LocalStorage{
		imageDir:  imageDir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		tempDir:   tempDir,
		now:       time.Now,
	}, nil
}

// uniqueName combines a nanosecond timestamp with a random suffix.
func (ls *LocalStorage) uniqueName(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return strconv.FormatInt(ls.now().UnixNano(), 10) + "-" + suffix + ext
}

// StageUpload copies the uploaded part into the scratch directory.
func (ls *LocalStorage) StageUpload(fileHeader *multipart.FileHeader) (string, func(), error) {
	if fileHeader == nil {
		return "", func() {}, errors.New("no file uploaded")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(fileHeader.Filename)
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	dstPath := filepath.Join(ls.tempDir, ls.uniqueName(strings.ToLower(ext)))

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create scratch file: %w", err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := os.Remove(dstPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				logger.Warn().Err(err).Str("path", dstPath).Msg("Failed to remove scratch file")
			}
		})
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		release()
		return "", func() {}, fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		release()
		return "", func() {}, fmt.Errorf("failed to stage upload: %w", err)
	}

	logger.Debug().Str("filename", fileHeader.Filename).Str("staged_as", dstPath).Msg("Upload staged")
	return dstPath, release, nil
}

// WriteImage creates a new file in the image directory and fills it.
func (ls *LocalStorage) WriteImage(ext string, write func(w io.Writer) error) (string, error) {
	name := ls.uniqueName(ext)
	dstPath := filepath.Join(ls.imageDir, name)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if err := write(dst); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to flush destination file: %w", err)
	}

	publicPath := path.Join(ls.urlPrefix, name)
	logger.Info().Str("path", dstPath).Str("public_path", publicPath).Msg("Image stored")
	return publicPath, nil
}

// DeleteFile removes a stored image. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(publicPath string) error {
	fullPath := ls.GetFullPath(publicPath)
	if fullPath == "" {
		return fmt.Errorf("invalid file path: %q", publicPath)
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Str("path", fullPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", fullPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", fullPath).Msg("File deleted")
	return nil
}

// ListImages lists regular files in the image directory as public paths.
func (ls *LocalStorage) ListImages() ([]string, error) {
	entries, err := os.ReadDir(ls.imageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, path.Join(ls.urlPrefix, e.Name()))
		}
	}
	return paths, nil
}

// ModTime stats the file behind a public path.
func (ls *LocalStorage) ModTime(publicPath string) (time.Time, error) {
	fullPath := ls.GetFullPath(publicPath)
	if fullPath == "" {
		return time.Time{}, fmt.Errorf("invalid file path: %q", publicPath)
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat image: %w", err)
	}
	return info.ModTime(), nil
}

// GetFullPath maps a public path onto the image directory. Only the base name
// is used, so a crafted path cannot escape the directory.
func (ls *LocalStorage) GetFullPath(publicPath string) string {
	filename := path.Base(filepath.ToSlash(publicPath))
	if filename == "" || filename == "." || filename == "/" || filename == ".." {
		return ""
	}
	return filepath.Join(ls.imageDir, filename)
}
