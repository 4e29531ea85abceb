package storage

import (
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./uploads"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) Put(handle string, r io.Reader) (string, error) {
	if handle == "" {
		return "", errors.New("empty handle")
	}
	dst := filepath.Join(s.base, filepath.Clean(handle))
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return handle, nil
}

func (s *FSStore) Get(handle string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.base, filepath.Clean(handle)))
}

func (s *FSStore) DownloadURL(handle string) (string, error) {
	u := url.URL{Scheme: "file", Path: filepath.Join(s.base, handle)}
	return u.String(), nil
}
