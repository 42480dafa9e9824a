package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cppla/aiblog/utils"
)

// LocalURLPrefix is the route under which LocalStore files are served.
const LocalURLPrefix = "/uploads"

// LocalStore writes images below a directory, sharded by upload date.
type LocalStore struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewLocalStore(dir string, maxBytes int64) *LocalStore {
	return &LocalStore{dir: dir, maxBytes: maxBytes, now: time.Now}
}

// Dir returns the root directory, for static file serving.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(ctx context.Context, ownerID uint, fh *multipart.FileHeader) (string, error) {
	img, err := readImage(fh, s.maxBytes)
	if err != nil {
		return "", err
	}

	now := s.now()
	rel := path.Join(now.Format("2006"), now.Format("01"), now.Format("02"), uuid.NewString()+img.ext)
	dst := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", utils.Internal(50062, "failed to create upload directory", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", utils.Internal(50063, "failed to save image", err)
	}
	if _, err := io.Copy(out, img.reader()); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", utils.Internal(50064, "failed to write image", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", utils.Internal(50064, "failed to write image", err)
	}

	utils.Sugar.Debugf("stored image owner=%d path=%s", ownerID, dst)
	return LocalURLPrefix + "/" + rel, nil
}

func (s *LocalStore) Delete(ctx context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, LocalURLPrefix+"/")
	if !ok {
		return ErrBadImagePath
	}
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return ErrBadImagePath
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
