package folderstore

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	mserrors "github.com/infodancer/folderstore/errors"
)

// fileConfig is the TOML form of StoreConfig:
//
//	type = "maildir"
//	base_path = "/var/mail"
//
//	[options]
//	layout = "maildirpp"
//	maildir_subdir = "Maildir"
type fileConfig struct {
	Type     string            `toml:"type"`
	BasePath string            `toml:"base_path"`
	Options  map[string]string `toml:"options"`
}

// LoadConfig reads a StoreConfig from a TOML file.
func LoadConfig(path string) (StoreConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StoreConfig{}, errors.Wrapf(err, "could not read config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a StoreConfig from TOML.
func ParseConfig(data []byte) (StoreConfig, error) {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return StoreConfig{}, errors.Wrap(err, "could not parse config")
	}
	if fc.Type == "" || fc.BasePath == "" {
		return StoreConfig{}, errors.Wrap(mserrors.ErrStoreConfigInvalid, "type and base_path are required")
	}
	return StoreConfig{
		Type:     fc.Type,
		BasePath: fc.BasePath,
		Options:  fc.Options,
	}, nil
}
