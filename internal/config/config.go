// Package config provides functionality for managing configuration options
// for the application using a JSON file, command-line flags and environment
// variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
)

// Default values used when nothing else is configured.
const (
	DefaultAddress      = "localhost:8080"
	DefaultLocalBackend = "file"
	DefaultLocalPath    = "storage.json"
	DefaultLogLevel     = "info"
	DefaultConfigPath   = "config.json"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address" env:"SERVER_ADDRESS"`

	// DatabaseDSN is the Postgres connection string of the remote store.
	// Empty means local mode.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// LocalBackend selects the local store: file, sqlite or memory.
	LocalBackend string `json:"local_backend" env:"LOCAL_BACKEND"`

	// LocalPath is the file used by the file and sqlite backends.
	LocalPath string `json:"local_path" env:"LOCAL_PATH"`

	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert" env:"TLS_CERT"`
	TLSKey  string `json:"tls_key" env:"TLS_KEY"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`
}

// TLSEnabled reports whether a certificate and key are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// ParseArgs builds Options from args (without the program name). Values are
// applied in order: defaults, the config file, explicit flags and finally
// environment variables.
func ParseArgs(name string, args []string) (*Options, error) {
	opts := &Options{
		Address:      DefaultAddress,
		LocalBackend: DefaultLocalBackend,
		LocalPath:    DefaultLocalPath,
		LogLevel:     DefaultLogLevel,
		Config:       DefaultConfigPath,
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := &Options{}
	fs.StringVar(&flags.Address, "a", "", "run on ip:port server")
	fs.StringVar(&flags.DatabaseDSN, "d", "", "postgres DSN of the remote store")
	fs.StringVar(&flags.LocalBackend, "local", "", "local store backend: file, sqlite or memory")
	fs.StringVar(&flags.LocalPath, "local-path", "", "path of the local store")
	fs.StringVar(&flags.LogLevel, "log-level", "", "log level")
	fs.StringVar(&flags.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&flags.TLSKey, "tls-key", "", "path to TLS key")
	fs.StringVar(&flags.Config, "config", "", "path to config file")
	fs.StringVar(&flags.Config, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if flags.Config != "" {
		opts.Config = flags.Config
	}
	if path := os.Getenv("CONFIG"); path != "" {
		opts.Config = path
	}
	if err := loadFile(opts.Config, opts, flags.Config != "" || os.Getenv("CONFIG") != ""); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			opts.Address = flags.Address
		case "d":
			opts.DatabaseDSN = flags.DatabaseDSN
		case "local":
			opts.LocalBackend = flags.LocalBackend
		case "local-path":
			opts.LocalPath = flags.LocalPath
		case "log-level":
			opts.LogLevel = flags.LogLevel
		case "tls-cert":
			opts.TLSCert = flags.TLSCert
		case "tls-key":
			opts.TLSKey = flags.TLSKey
		}
	})

	if err := env.Parse(opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return opts, nil
}

// Parse reads the process arguments and environment.
func Parse() (*Options, error) {
	return ParseArgs(os.Args[0], os.Args[1:])
}

// loadFile overlays the JSON file at path onto opts. A missing file is only
// an error when it was requested explicitly.
func loadFile(path string, opts *Options, explicit bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
