// Package gcs provides a Google Cloud Storage implementation of the storage adapter interfaces.
package gcs

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	storageAdapter "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage/config"
	coreConfig "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const (
	// ProviderType defines the type identifier for this storage provider.
	ProviderType = "gcs"

	moduleName = "storage.gcs"
)

// gcsAdapter implements storage.StorageConnection over a *storage.Client.
type gcsAdapter struct {
	client *storage.Client
	cfg    storageConfig.StorageConfig
	name   string
}

var _ storageAdapter.StorageConnection = (*gcsAdapter)(nil)

// ClientOptions translates cfg into client options. Without credentials and
// with an endpoint set (an emulator), authentication is disabled.
func ClientOptions(cfg storageConfig.StorageConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
		if cfg.CredentialsFile == "" {
			opts = append(opts, option.WithoutAuthentication())
		}
	}
	return opts
}

// NewGCSAdapter creates a client for the named connection.
func NewGCSAdapter(cfg storageConfig.StorageConfig, name string) (storageAdapter.StorageConnection, error) {
	client, err := storage.NewClient(context.Background(), ClientOptions(cfg)...)
	if err != nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "failed to create GCS client for '%s'", name, err)
	}
	return &gcsAdapter{client: client, cfg: cfg, name: name}, nil
}

func (a *gcsAdapter) Close() error {
	return a.client.Close()
}

func (a *gcsAdapter) Type() string { return ProviderType }

func (a *gcsAdapter) Name() string { return a.name }

func (a *gcsAdapter) bucket(bucket string) (*storage.BucketHandle, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	if bucket == "" {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "no bucket given and no bucket_name configured for '%s'", a.name)
	}
	return a.client.Bucket(bucket), nil
}

func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	handle, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	w := handle.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to upload '%s'", objectName, err)
	}
	if err := w.Close(); err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to finalize upload of '%s'", objectName, err)
	}
	logger.Debugf("Uploaded object '%s' (gcs adapter '%s').", objectName, a.name)
	return nil
}

func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	handle, err := a.bucket(bucket)
	if err != nil {
		return nil, err
	}
	r, err := handle.Object(objectName).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, exception.NewUploadErrorf(moduleName, exception.KindNotFound, "object '%s' not found", objectName, err)
		}
		return nil, exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to download '%s'", objectName, err)
	}
	return r, nil
}

func (a *gcsAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	handle, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	it := handle.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to list objects with prefix '%s'", prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	handle, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	if err := handle.Object(objectName).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			logger.Warnf("Attempted to delete non-existent object '%s' (gcs adapter '%s').", objectName, a.name)
			return nil
		}
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to delete '%s'", objectName, err)
	}
	return nil
}

// NewGCSProvider creates the StorageProvider for "gcs" connections.
func NewGCSProvider(cfg *coreConfig.Config) storageAdapter.StorageProvider {
	return storageAdapter.NewBaseProvider(cfg, ProviderType, NewGCSAdapter)
}
