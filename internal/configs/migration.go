package configs

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// UpgradeGlobalConfig brings a config read from disk up to
// CurrentConfigVersion and reports whether anything changed.
//
// Version 0 configs predate the [cred] table: they may lack a machine id,
// and targets written by early releases may lack an auth_ref. Those are
// backfilled. Nothing that was set explicitly is overwritten.
func UpgradeGlobalConfig(config *GlobalConfig) bool {
	changed := false

	if config.Cred.Version == "" {
		config.Cred.Version = ToolVersion
		changed = true
	}

	if config.Cred.ConfigVersion < 1 {
		if config.Machine.ID == "" {
			config.Machine.ID = "m_" + uuid.New().String()[:8]
		}
		if config.Machine.Hostname == "" {
			config.Machine.Hostname, _ = os.Hostname()
		}
		config.Cred.ConfigVersion = 1
		changed = true
	}

	if config.Targets == nil {
		config.Targets = make(map[string]TargetConfig)
	}
	for name, tc := range config.Targets {
		if strings.TrimSpace(tc.AuthRef) == "" {
			tc.AuthRef = "cred:target:" + name + ":default"
			config.Targets[name] = tc
			changed = true
		}
	}

	config.upgraded = config.upgraded || changed
	return changed
}
