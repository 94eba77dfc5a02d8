package storage

import (
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"

	storageConfig "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage/config"
	coreConfig "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const moduleName = "storage"

// ConnectFunc opens a connection of the provider's type.
type ConnectFunc func(cfg storageConfig.StorageConfig, name string) (StorageConnection, error)

// DecodeConfig reads the storage settings named name from `surfin.storage`.
func DecodeConfig(cfg *coreConfig.Config, name string) (storageConfig.StorageConfig, error) {
	var storageCfg storageConfig.StorageConfig
	namedConfig, ok := cfg.Surfin.StorageConfigs[name]
	if !ok {
		return storageCfg, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "storage configuration for name '%s' not found", name)
	}
	if err := mapstructure.WeakDecode(namedConfig, &storageCfg); err != nil {
		return storageCfg, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "failed to decode storage config for '%s'", name, err)
	}
	return storageCfg, nil
}

// BaseProvider caches named connections of one storage type.
type BaseProvider struct {
	cfg          *coreConfig.Config
	providerType string
	connect      ConnectFunc
	connections  map[string]StorageConnection
	mu           sync.RWMutex
}

// NewBaseProvider creates a provider of providerType that opens connections with connect.
func NewBaseProvider(cfg *coreConfig.Config, providerType string, connect ConnectFunc) *BaseProvider {
	return &BaseProvider{
		cfg:          cfg,
		providerType: providerType,
		connect:      connect,
		connections:  make(map[string]StorageConnection),
	}
}

func (p *BaseProvider) Type() string {
	return p.providerType
}

// GetConnection returns the cached connection or opens a new one.
func (p *BaseProvider) GetConnection(name string) (StorageConnection, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conn, ok = p.connections[name]
	if ok {
		return conn, nil
	}
	return p.openLocked(name)
}

func (p *BaseProvider) openLocked(name string) (StorageConnection, error) {
	storageCfg, err := DecodeConfig(p.cfg, name)
	if err != nil {
		return nil, err
	}
	if storageCfg.Type != p.providerType {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"storage config type mismatch for '%s': expected '%s', got '%s'", name, p.providerType, storageCfg.Type)
	}

	conn, err := p.connect(storageCfg, name)
	if err != nil {
		return nil, err
	}
	p.connections[name] = conn
	logger.Debugf("Created new %s storage connection '%s'.", p.providerType, name)
	return conn, nil
}

// ForceReconnect closes and reopens the named connection.
func (p *BaseProvider) ForceReconnect(name string) (StorageConnection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.connections[name]; ok {
		if err := conn.Close(); err != nil {
			logger.Warnf("Failed to gracefully close %s storage connection '%s' during force reconnect: %v", p.providerType, name, err)
		}
		delete(p.connections, name)
	}
	return p.openLocked(name)
}

// CloseAll closes every cached connection.
func (p *BaseProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			errs = exception.Append(errs, fmt.Errorf("failed to close %s storage connection '%s': %w", p.providerType, name, err))
		}
		delete(p.connections, name)
	}
	return errs
}
