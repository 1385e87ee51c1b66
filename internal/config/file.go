package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StructuredFileConfig is the on-disk layout of a JSON or YAML config file.
type StructuredFileConfig struct {
	App struct {
		BusinessID   string `json:"business_id" yaml:"business_id"`
		Token        string `json:"token" yaml:"token"`
		TokenSignKey string `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer  string `json:"token_issuer" yaml:"token_issuer"`
		HashKey      string `json:"hash_key" yaml:"hash_key"`
		Version      string `json:"version" yaml:"version"`
		LogFile      string `json:"log_file" yaml:"log_file"`
	} `json:"app,omitempty" yaml:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" yaml:"dsn"`
		} `json:"db,omitempty" yaml:"db,omitempty"`

		Local struct {
			Engine    string   `json:"engine" yaml:"engine"`
			Path      string   `json:"path" yaml:"path"`
			Retention Duration `json:"retention" yaml:"retention"`
		} `json:"local,omitempty" yaml:"local,omitempty"`
	} `json:"storage,omitempty" yaml:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		GRPCAddress    string   `json:"grpc_address" yaml:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	} `json:"server,omitempty" yaml:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		GRPCAddress    string   `json:"grpc_address" yaml:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	} `json:"adapter,omitempty" yaml:"adapter,omitempty"`

	Workers struct {
		SyncInterval    Duration `json:"sync_interval" yaml:"sync_interval"`
		CleanupInterval Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
		ProbeInterval   Duration `json:"probe_interval" yaml:"probe_interval"`
	} `json:"workers,omitempty" yaml:"workers,omitempty"`

	Queue struct {
		MaxRetries int `json:"max_retries" yaml:"max_retries"`
	} `json:"queue,omitempty" yaml:"queue,omitempty"`
}

func parseFile(path string) (*StructuredConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}
	defer file.Close()

	var fileCfg StructuredFileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.NewDecoder(file).Decode(&fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(file).Decode(&fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFile, path)
	}

	cfg := &StructuredConfig{
		App: App{
			BusinessID:   fileCfg.App.BusinessID,
			Token:        fileCfg.App.Token,
			TokenSignKey: fileCfg.App.TokenSignKey,
			TokenIssuer:  fileCfg.App.TokenIssuer,
			HashKey:      fileCfg.App.HashKey,
			Version:      fileCfg.App.Version,
			LogFile:      fileCfg.App.LogFile,
		},
		Storage: Storage{
			DB: DB{DSN: fileCfg.Storage.DB.DSN},
			Local: Local{
				Engine:    fileCfg.Storage.Local.Engine,
				Path:      fileCfg.Storage.Local.Path,
				Retention: time.Duration(fileCfg.Storage.Local.Retention),
			},
		},
		Server: Server{
			HTTPAddress:    fileCfg.Server.HTTPAddress,
			GRPCAddress:    fileCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(fileCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    fileCfg.Adapter.HTTPAddress,
			GRPCAddress:    fileCfg.Adapter.GRPCAddress,
			RequestTimeout: time.Duration(fileCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			SyncInterval:    time.Duration(fileCfg.Workers.SyncInterval),
			CleanupInterval: time.Duration(fileCfg.Workers.CleanupInterval),
			ProbeInterval:   time.Duration(fileCfg.Workers.ProbeInterval),
		},
		Queue: Queue{MaxRetries: fileCfg.Queue.MaxRetries},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON and YAML
// unmarshaling from strings like "1h", "30s" or from integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var nanos int64
	if err := node.Decode(&nanos); err == nil {
		*d = Duration(time.Duration(nanos))
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	tmp, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
