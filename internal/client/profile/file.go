package profile

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/userdesk/internal/common"
)

// MaxImageSize is the largest file accepted for upload: 5 MiB.
const MaxImageSize int64 = 5 * 1024 * 1024

const (
	MsgNoFile       = "Please select a file."
	MsgBadImageType = "Only image files are allowed (JPEG, PNG, GIF, WebP)"
	MsgImageTooBig  = "File size must be less than 5MB"
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageFile is a candidate upload. Open is called once per upload attempt.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Validate applies the local type and size checks. Nothing is read.
func (f *ImageFile) Validate() error {
	switch {
	case f == nil || f.Name == "" || f.Open == nil:
		return common.NewValidationError("file", MsgNoFile)
	case !allowedTypes[f.ContentType]:
		return common.NewValidationError("file", MsgBadImageType)
	case f.Size > MaxImageSize:
		return common.NewValidationError("file", MsgImageTooBig)
	}
	return nil
}

// OpenImageFile describes the file at path. The content type comes from the
// extension; when the extension is unknown the first 512 bytes are sniffed.
func OpenImageFile(path string) (*ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	ct, err := contentType(path)
	if err != nil {
		return nil, err
	}

	return &ImageFile{
		Name:        filepath.Base(path),
		ContentType: ct,
		Size:        info.Size(),
		Open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func contentType(path string) (string, error) {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(head[:n]))
	return mt, nil
}
