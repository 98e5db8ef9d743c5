package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	dErrors "annexops/pkg/domain-errors"
)

const fileScheme = "file://"

// FilesystemStore writes objects under a base directory. Download URLs are
// HMAC-signed so the download handler can verify them without state.
type FilesystemStore struct {
	baseDir    string
	signingKey []byte
}

func NewFilesystemStore(baseDir string, signingKey []byte) *FilesystemStore {
	return &FilesystemStore{baseDir: baseDir, signingKey: signingKey}
}

func (s *FilesystemStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorageFailure, "create storage directory")
	}
	if _, err := os.Stat(path); err == nil {
		return "", dErrors.New(dErrors.CodeStorageFailure, "object already exists: "+key)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", dErrors.Wrap(err, dErrors.CodeStorageFailure, "stat object")
	}

	// Write to a temp file then rename so partial writes never become
	// visible objects.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorageFailure, "create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", dErrors.Wrap(err, dErrors.CodeStorageFailure, "write object")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", dErrors.Wrap(err, dErrors.CodeStorageFailure, "close object")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", dErrors.Wrap(err, dErrors.CodeStorageFailure, "publish object")
	}
	return fileScheme + key, nil
}

func (s *FilesystemStore) PresignedGet(_ context.Context, uri string, ttl time.Duration) (string, error) {
	key, err := s.keyFromURI(uri)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(s.baseDir, filepath.FromSlash(key))); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrObjectNotFound
		}
		return "", dErrors.Wrap(err, dErrors.CodeStorageFailure, "stat object")
	}

	expires := time.Now().Add(ttl).Unix()
	sig := s.sign(key, expires)
	// Keys are uuid-based paths, safe to embed without escaping.
	return fmt.Sprintf("/downloads/%s?expires=%d&signature=%s", key, expires, sig), nil
}

func (s *FilesystemStore) Delete(_ context.Context, uri string) error {
	key, err := s.keyFromURI(uri)
	if err != nil {
		return err
	}
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeStorageFailure, "delete object")
	}
	return nil
}

// Open returns the stored bytes for a key after verifying the signature the
// download handler received.
func (s *FilesystemStore) Open(key string, expires int64, signature string) ([]byte, error) {
	if time.Now().Unix() > expires {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "download link expired")
	}
	if !hmac.Equal([]byte(signature), []byte(s.sign(key, expires))) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid download signature")
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "read object")
	}
	return data, nil
}

func (s *FilesystemStore) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.signingKey)
	fmt.Fprintf(mac, "%s:%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *FilesystemStore) keyFromURI(uri string) (string, error) {
	key, ok := strings.CutPrefix(uri, fileScheme)
	if !ok {
		return "", dErrors.New(dErrors.CodeStorageFailure, "unrecognized storage URI: "+uri)
	}
	clean := filepath.ToSlash(filepath.Clean("/" + key))
	return strings.TrimPrefix(clean, "/"), nil
}
