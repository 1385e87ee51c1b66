// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ServerAuth holds token verification settings of the document store.
type ServerAuth struct {
	TokenSignKey string
	TokenIssuer  string
	// HashKey verifies the HashSHA256 header. Empty disables the check.
	HashKey string
}

// ServerConfig is the configuration of the document store assembled from
// [StructuredConfig].
type ServerConfig struct {
	Server  Server
	DB      DB
	Auth    ServerAuth
	Version string
}

// GetServerConfig builds and validates the document store config view.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := newServerConfig(cfg)
	return serverCfg, serverCfg.validate()
}

func newServerConfig(cfg *StructuredConfig) *ServerConfig {
	serverCfg := &ServerConfig{
		Server: cfg.Server,
		DB:     cfg.Storage.DB,
		Auth: ServerAuth{
			TokenSignKey: cfg.App.TokenSignKey,
			TokenIssuer:  cfg.App.TokenIssuer,
			HashKey:      cfg.App.HashKey,
		},
		Version: cfg.App.Version,
	}
	if serverCfg.Server.RequestTimeout == 0 {
		serverCfg.Server.RequestTimeout = 30 * time.Second
	}

	return serverCfg
}
