package configs

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/PolarWolf314/cred/internal/utils"
)

// SaveTOML encodes v and replaces path atomically. The file is 0600.
func SaveTOML(path string, v any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return utils.WriteFileAtomic(path, buf.Bytes(), 0600)
}

// LoadTOML decodes path into v. A missing file matches fs.ErrNotExist.
func LoadTOML(path string, v any) error {
	if _, err := toml.DecodeFile(path, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
