package filestorage

import (
	"io"
	"mime/multipart"
	"time"
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// StageUpload copies an uploaded part to a scratch file on disk. The
	// returned release func removes it and is safe to call more than once.
	StageUpload(fileHeader *multipart.FileHeader) (path string, release func(), err error)

	// WriteImage creates a uniquely named file with the given extension in the
	// public image directory, fills it through write and returns its
	// root-relative public path. A failed write leaves no file behind.
	WriteImage(ext string, write func(w io.Writer) error) (string, error)

	// DeleteFile removes a file previously returned by WriteImage.
	DeleteFile(publicPath string) error

	// ListImages returns the public paths of every file in the image directory.
	ListImages() ([]string, error)

	// ModTime returns the last modification time of a stored image.
	ModTime(publicPath string) (time.Time, error)

	// GetFullPath returns the filesystem path for a public path.
	GetFullPath(publicPath string) string
}
