// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-biz-sync/internal/utils"
)

// Local store engines.
const (
	EngineSQLite = "sqlite"
	EngineBolt   = "bolt"
)

// Defaults applied to the agent configuration when no source sets a value.
const (
	DefaultEngine          = EngineSQLite
	DefaultLocalPath       = "offline.db"
	DefaultRetention       = 30 * 24 * time.Hour
	DefaultRequestTimeout  = 10 * time.Second
	DefaultSyncInterval    = 5 * time.Minute
	DefaultCleanupInterval = 24 * time.Hour
	DefaultProbeInterval   = 10 * time.Second
	DefaultMaxRetries      = 5
)

// ClientApp holds agent-level settings.
type ClientApp struct {
	// BusinessID is the business the agent synchronizes.
	BusinessID string
	// LogFile is the file the agent logs to.
	LogFile string
	// Version is printed by the status view.
	Version string
	// StatusOnly makes the agent print the sync status and exit.
	StatusOnly bool
}

// ClientAdapter holds network settings used by the agent transport layer.
type ClientAdapter struct {
	// HTTPAddress is the document store endpoint.
	HTTPAddress string
	// GRPCAddress is the health service endpoint. Empty disables probing.
	GRPCAddress string
	// RequestTimeout is the timeout of a single remote call.
	RequestTimeout time.Duration
	// Token is the bearer token sent with every request.
	Token string
	// HashKey signs request bodies. Empty disables signing.
	HashKey string
}

// ClientStorage holds local store settings.
type ClientStorage struct {
	Engine    string
	Path      string
	Retention time.Duration
}

// ClientQueue holds write queue settings.
type ClientQueue struct {
	MaxRetries int
}

// ClientWorkers contains agent background job settings.
type ClientWorkers struct {
	SyncInterval    time.Duration
	CleanupInterval time.Duration
	ProbeInterval   time.Duration
}

// ClientConfig is the configuration of the sync agent assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Queue   ClientQueue
	Workers ClientWorkers
}

// GetClientConfig builds and validates the agent config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	clientCfg := &ClientConfig{
		App: ClientApp{
			BusinessID: cfg.App.BusinessID,
			LogFile:    cfg.App.LogFile,
			Version:    cfg.App.Version,
			StatusOnly: cfg.StatusOnly,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			GRPCAddress:    cfg.Adapter.GRPCAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.App.Token,
			HashKey:        cfg.App.HashKey,
		},
		Storage: ClientStorage{
			Engine:    cfg.Storage.Local.Engine,
			Path:      cfg.Storage.Local.Path,
			Retention: cfg.Storage.Local.Retention,
		},
		Queue: ClientQueue{MaxRetries: cfg.Queue.MaxRetries},
		Workers: ClientWorkers{
			SyncInterval:    cfg.Workers.SyncInterval,
			CleanupInterval: cfg.Workers.CleanupInterval,
			ProbeInterval:   cfg.Workers.ProbeInterval,
		},
	}
	clientCfg.applyDefaults()

	return clientCfg
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Storage.Engine == "" {
		cfg.Storage.Engine = DefaultEngine
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultLocalPath
	}
	if cfg.Storage.Retention == 0 {
		cfg.Storage.Retention = DefaultRetention
	}
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Queue.MaxRetries == 0 {
		cfg.Queue.MaxRetries = DefaultMaxRetries
	}
	if cfg.Workers.SyncInterval == 0 {
		cfg.Workers.SyncInterval = DefaultSyncInterval
	}
	if cfg.Workers.CleanupInterval == 0 {
		cfg.Workers.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.Workers.ProbeInterval == 0 {
		cfg.Workers.ProbeInterval = DefaultProbeInterval
	}
	// business scope of the token when none is configured
	if cfg.App.BusinessID == "" && cfg.Adapter.Token != "" {
		if businessID, err := utils.ParseBusinessIDFromJWT(cfg.Adapter.Token); err == nil {
			cfg.App.BusinessID = businessID
		}
	}
}
