// Package artifact persists scan images, partitioned by resolved storage
// category. The metadata store only ever references the returned URI and
// key; raw image bytes are never retained there.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the artifact backend. Save returns the public URI recorded on the
// scan and the key used for later deletion.
type Store interface {
	Save(category, filename string, data []byte) (uri string, key string, err error)
	Delete(key string) error
}

// New selects the store from ARTIFACT_BACKEND ("s3" or local disk, the
// default).
func New() (Store, error) {
	if os.Getenv("ARTIFACT_BACKEND") == "s3" {
		return NewS3Store()
	}
	return NewLocalStore()
}

type localStore struct {
	root string
}

// NewLocalStore prepares the upload root and one directory per storage
// category.
func NewLocalStore() (Store, error) {
	root := os.Getenv("UPLOAD_DIR")
	if root == "" {
		root = "uploads"
	}

	for _, category := range []string{"acne", "wrinkles", "pimple"} {
		if err := os.MkdirAll(filepath.Join(root, category), 0o755); err != nil {
			return nil, fmt.Errorf("prepare upload dir: %w", err)
		}
	}

	return &localStore{root: root}, nil
}

func (s *localStore) Save(category, filename string, data []byte) (string, string, error) {
	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", err
	}

	uri := fmt.Sprintf("/uploads/%s/%s", category, filename)
	return uri, path, nil
}

func (s *localStore) Delete(key string) error {
	return os.Remove(key)
}

// Root exposes the upload root for static serving.
func (s *localStore) Root() string {
	return s.root
}

// LocalRoot returns the configured upload root without constructing a store.
func LocalRoot() string {
	if root := os.Getenv("UPLOAD_DIR"); root != "" {
		return root
	}
	return "uploads"
}
