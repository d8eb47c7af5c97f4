// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package kss

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gamemakerclub/api-core/core/logger"
)

// LocalFilesystem stores every key as a folder below the base folder, holding
// the file itself and its content type
type LocalFilesystem struct {
	baseFolder string
}

var _ Driver = (*LocalFilesystem)(nil)

// NewLocalFilesystem returns a new LocalFilesystem. The base folder is created
// if it does not exist.
func NewLocalFilesystem(config LocalConfiguration) (*LocalFilesystem, error) {
	if config.BasePath == "" {
		return nil, errors.New("BasePath must not be empty")
	}
	if err := os.MkdirAll(config.BasePath, 0700); err != nil {
		return nil, err
	}
	logger.Default().Debugln("KSS local filesystem enabled:", config.BasePath)
	return &LocalFilesystem{baseFolder: config.BasePath}, nil
}

func (f *LocalFilesystem) folder(key string) string {
	return filepath.Join(f.baseFolder, filepath.FromSlash(key))
}

// Upload implements Driver
func (f *LocalFilesystem) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	folder := f.folder(key)
	if err := os.MkdirAll(folder, 0700); err != nil {
		logger.FromContext(ctx).WithError(err).Errorf("Error 1202: Could not create `%s` key: '%s'", folder, key)
		return err
	}

	// write to a temporary file first so that readers never see partial content
	tmp, err := os.CreateTemp(folder, ".upload-*")
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorf("Error 1203: Could not create file in `%s` key: '%s'", folder, key)
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err = io.Copy(tmp, body); err != nil {
		tmp.Close()
		logger.FromContext(ctx).WithError(err).Errorf("Error 1204: Could not copy to `%s` key: '%s'", folder, key)
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.WriteFile(filepath.Join(folder, "content-type"), []byte(contentType), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(folder, "file"))
}

// Download implements Driver
func (f *LocalFilesystem) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !validKey(key) {
		return nil, "", ErrInvalidKey
	}
	folder := f.folder(key)
	file, err := os.Open(filepath.Join(folder, "file"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	contentType, err := os.ReadFile(filepath.Join(folder, "content-type"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		file.Close()
		return nil, "", err
	}
	return file, strings.TrimSpace(string(contentType)), nil
}

// Delete implements Driver
func (f *LocalFilesystem) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	logger.FromContext(ctx).Debugln("Filesystem: deleting", key)
	return os.RemoveAll(f.folder(key))
}

// DeleteAllWithPrefix implements Driver. Since keys are folders, deleting a
// prefix deletes the folder of the prefix.
func (f *LocalFilesystem) DeleteAllWithPrefix(ctx context.Context, prefix string) error {
	if !validKey(prefix) || strings.Trim(prefix, "/") == "" {
		return ErrInvalidKey
	}
	logger.FromContext(ctx).Debugln("Filesystem: deleting all", prefix)
	return os.RemoveAll(f.folder(prefix))
}
