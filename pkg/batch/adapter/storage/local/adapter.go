// Package local provides a local file system implementation of the storage adapter interfaces.
package local

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	storageAdapter "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage/config"
	coreConfig "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const (
	// ProviderType defines the type identifier for this local storage provider.
	ProviderType = "local"

	moduleName = "storage.local"
)

// localAdapter stores objects as files under BaseDir/<bucket>/<object>.
type localAdapter struct {
	cfg  storageConfig.StorageConfig
	name string
}

var _ storageAdapter.StorageConnection = (*localAdapter)(nil)

// NewLocalAdapter creates a new localAdapter, creating BaseDir if needed.
func NewLocalAdapter(cfg storageConfig.StorageConfig, name string) (storageAdapter.StorageConnection, error) {
	if cfg.BaseDir == "" {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "local storage adapter '%s': base_dir must be specified", name)
	}
	info, err := os.Stat(cfg.BaseDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
			return nil, exception.NewUploadErrorf(moduleName, exception.KindPersistence, "local storage adapter '%s': failed to create base_dir '%s'", name, cfg.BaseDir, err)
		}
	case err != nil:
		return nil, exception.NewUploadErrorf(moduleName, exception.KindPersistence, "local storage adapter '%s': failed to stat base_dir '%s'", name, cfg.BaseDir, err)
	case !info.IsDir():
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "local storage adapter '%s': base_dir '%s' is not a directory", name, cfg.BaseDir)
	}

	return &localAdapter{cfg: cfg, name: name}, nil
}

func (a *localAdapter) Close() error {
	logger.Debugf("Local storage adapter '%s' closed.", a.name)
	return nil
}

func (a *localAdapter) Type() string { return ProviderType }

func (a *localAdapter) Name() string { return a.name }

// Upload writes data to a file, creating parent directories.
func (a *localAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to create directory '%s'", dir, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to create file '%s'", fullPath, err)
	}
	if _, err := io.Copy(file, data); err != nil {
		file.Close()
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to write data to file '%s'", fullPath, err)
	}
	if err := file.Close(); err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to close file '%s'", fullPath, err)
	}
	logger.Debugf("Uploaded data to '%s' (local adapter '%s').", fullPath, a.name)
	return nil
}

func (a *localAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, exception.NewUploadErrorf(moduleName, exception.KindNotFound, "object '%s' not found", objectName, err)
		}
		return nil, exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to open file '%s'", fullPath, err)
	}
	return file, nil
}

// ListObjects walks the bucket directory and reports slash-separated names relative to it.
func (a *localAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	basePath, err := a.resolvePath(bucket, "")
	if err != nil {
		return err
	}
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		return nil
	}

	err = filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(basePath, path)
		if err != nil {
			return err
		}
		objectName := filepath.ToSlash(rel)
		if !strings.HasPrefix(objectName, prefix) {
			return nil
		}
		return fn(objectName)
	})
	if err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to list objects in '%s' with prefix '%s'", basePath, prefix, err)
	}
	return nil
}

func (a *localAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("Attempted to delete non-existent object '%s' (local adapter '%s').", fullPath, a.name)
			return nil
		}
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to delete file '%s'", fullPath, err)
	}
	return nil
}

// resolvePath joins BaseDir, bucket and objectName and rejects paths escaping BaseDir.
func (a *localAdapter) resolvePath(bucket, objectName string) (string, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	fullPath := filepath.Join(a.cfg.BaseDir, bucket, objectName)

	absBaseDir, err := filepath.Abs(a.cfg.BaseDir)
	if err != nil {
		return "", exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "failed to get absolute path for base_dir '%s'", a.cfg.BaseDir, err)
	}
	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", exception.NewUploadErrorf(moduleName, exception.KindInvalidValue, "failed to get absolute path for '%s'", fullPath, err)
	}
	if absFullPath != absBaseDir && !strings.HasPrefix(absFullPath, absBaseDir+string(filepath.Separator)) {
		return "", exception.NewUploadErrorf(moduleName, exception.KindInvalidValue, "resolved path '%s' is outside of base_dir '%s'", fullPath, a.cfg.BaseDir)
	}
	return fullPath, nil
}

// NewLocalProvider creates the StorageProvider for "local" connections.
func NewLocalProvider(cfg *coreConfig.Config) storageAdapter.StorageProvider {
	return storageAdapter.NewBaseProvider(cfg, ProviderType, NewLocalAdapter)
}
