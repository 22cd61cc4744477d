package config

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"github.com/ipa-fxm-rc/moveit-core/logging"
)

// Read reads a config from the given file. Environment variables in the file are expanded first.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
// A relative model path is resolved against the directory of that file.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := &Config{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to process Config")
	}

	if originalPath != "" && !filepath.IsAbs(cfg.Model) {
		cfg.Model = filepath.Join(filepath.Dir(originalPath), cfg.Model)
	}
	logger.Debugw("read config",
		"path", originalPath,
		"model", cfg.Model,
		"ik_groups", cfg.IKGroups,
		"allocators", len(cfg.Allocators))
	return cfg, nil
}
