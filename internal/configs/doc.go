// Package configs manages global and project configuration for cred.
//
// Configuration is stored in TOML at two levels:
//
//   - Global config: $CRED_CONFIG_DIR/config.toml, or cred/config.toml under
//     the OS user config directory. Holds preferences and the auth_ref of
//     every configured target.
//   - Project config: .cred/project.toml. Holds the project id used to find
//     the master key and the git identity recorded at init.
//
// Push state, the hash last delivered per target and key, lives beside the
// project config in .cred/state.toml. It contains no secret material.
//
// # Settings
//
// UserCredSettings is resolved at startup. Call InitProjectSettings before
// accessing ProjectCredSettings; it walks up the directory tree to the
// nearest .cred directory.
//
// Every write goes through SaveTOML, which replaces files atomically.
package configs
