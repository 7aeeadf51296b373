// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads dictionary configuration from a YAML file and the
// environment.
//
// Environment variables override the file:
//
//	SKK_USER_DICTIONARY         user_dictionary.path
//	SKK_USER_RANK               user_dictionary.rank_path
//	SKK_SERVER_HOST             server.host
//	SKK_SERVER_PORT             server.port
//	SKK_SERVER_REQUEST_CHARSET  server.request_charset
//	SKK_SERVER_RESPONSE_CHARSET server.response_charset
//	SKK_SERVER_DIAL_TIMEOUT     server.dial_timeout
//	SKK_IMMEDIATELY_JISYO_RW    immediately_jisyo_rw
//	SKK_VERBOSE                 verbose
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"github.com/ianlewis/go-skk"
	"github.com/ianlewis/go-skk/charset"
)

// ErrInvalidConfig indicates that the configuration failed validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the dictionary configuration.
type Config struct {
	// Dictionaries are the static dictionaries in the order they are
	// queried. They can only be set in the file.
	Dictionaries []DictionaryConfig `yaml:"dictionaries"`

	User   UserConfig   `yaml:"user_dictionary"`
	Server ServerConfig `yaml:"server"`

	// ImmediateWrite saves the user dictionary after every change.
	ImmediateWrite bool `yaml:"immediately_jisyo_rw" env:"SKK_IMMEDIATELY_JISYO_RW"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" env:"SKK_VERBOSE"`
}

// DictionaryConfig is a static dictionary file.
type DictionaryConfig struct {
	Path string `yaml:"path"`

	// Charset is the file encoding. Empty or "auto" detects it.
	Charset string `yaml:"charset"`
}

// UserConfig configures the user dictionary.
type UserConfig struct {
	Path     string `yaml:"path"      env:"SKK_USER_DICTIONARY" env-default:"~/.skk-jisyo"`
	RankPath string `yaml:"rank_path" env:"SKK_USER_RANK"`
}

// ServerConfig configures the dictionary server. No server is used if Host
// is empty.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SKK_SERVER_HOST"`
	Port            int           `yaml:"port"             env:"SKK_SERVER_PORT"             env-default:"1178"`
	RequestCharset  string        `yaml:"request_charset"  env:"SKK_SERVER_REQUEST_CHARSET"  env-default:"euc-jp"`
	ResponseCharset string        `yaml:"response_charset" env:"SKK_SERVER_RESPONSE_CHARSET" env-default:"euc-jp"`
	DialTimeout     time.Duration `yaml:"dial_timeout"     env:"SKK_SERVER_DIAL_TIMEOUT"     env-default:"5s"`
}

// Load reads the configuration file at path followed by the environment.
// A missing file is only an error if mustExist is true; otherwise the
// configuration comes from the environment and defaults.
func Load(path string, mustExist bool) (*Config, error) {
	var cfg Config

	_, err := os.Stat(path)
	switch {
	case path != "" && err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case path != "" && mustExist:
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	case path != "" && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	for i, d := range c.Dictionaries {
		if d.Path == "" {
			return fmt.Errorf("%w: dictionaries[%d]: path is required", ErrInvalidConfig, i)
		}
		if _, err := charset.Parse(d.Charset); err != nil {
			return fmt.Errorf("%w: dictionaries[%d]: %w", ErrInvalidConfig, i, err)
		}
	}

	if c.User.RankPath != "" && c.User.Path == "" {
		return fmt.Errorf("%w: user_dictionary: rank_path requires path", ErrInvalidConfig)
	}

	if c.Server.Host != "" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("%w: server: port must be in 1-65535 (got %d)", ErrInvalidConfig, c.Server.Port)
		}
		if _, err := charset.Parse(c.Server.RequestCharset); err != nil {
			return fmt.Errorf("%w: server: request_charset: %w", ErrInvalidConfig, err)
		}
		if _, err := charset.Parse(c.Server.ResponseCharset); err != nil {
			return fmt.Errorf("%w: server: response_charset: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

// OpenOptions converts the configuration to options for skk.Open. Paths
// starting with "~/" are relative to the user's home directory.
func (c *Config) OpenOptions(logger *zap.Logger) (*skk.OpenOptions, error) {
	opts := &skk.OpenOptions{
		ImmediateWrite: c.ImmediateWrite,
		Logger:         logger,
	}

	for _, d := range c.Dictionaries {
		path, err := ExpandHome(d.Path)
		if err != nil {
			return nil, err
		}
		cs, err := charset.Parse(d.Charset)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		opts.Dictionaries = append(opts.Dictionaries, skk.DictionaryOptions{
			Path:    path,
			Charset: cs,
		})
	}

	var err error
	if opts.User.Path, err = ExpandHome(c.User.Path); err != nil {
		return nil, err
	}
	if opts.User.RankPath, err = ExpandHome(c.User.RankPath); err != nil {
		return nil, err
	}

	if c.Server.Host != "" {
		req, err := charset.Parse(c.Server.RequestCharset)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		resp, err := charset.Parse(c.Server.ResponseCharset)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		opts.Server = &skk.RemoteOptions{
			Host:            c.Server.Host,
			Port:            c.Server.Port,
			RequestCharset:  req,
			ResponseCharset: resp,
			DialTimeout:     c.Server.DialTimeout,
		}
	}

	return opts, nil
}

// ExpandHome replaces a leading "~" path element with the user's home
// directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}
