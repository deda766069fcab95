// Package config provides local configuration for vininsight.
//
// Two files live in the user's configuration directory:
//   - credentials.yaml: the credential registry. It holds the auto.dev API key
//     under the fixed slot "vininsight_apikey".
//   - settings.yaml: optional application settings (API base URL, vehicle
//     list source, logging). Settings are read through viper, so every value
//     can also come from a VININSIGHT_* environment variable or a flag.
//
// # Configuration File Location
//
// Files are stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/vininsight or $HOME/.config/vininsight
//   - macOS: $HOME/.config/vininsight
//   - Windows: %LOCALAPPDATA%\vininsight
//
// # Security
//
// The API key is stored in plaintext with no expiry. The file is written with
// user-only permissions (0600) inside a user-only directory (0700), but anyone
// able to read the user's files can read the key.
//
// # Usage Example
//
//	store := config.NewFileCredentialStore(path)
//	if err := store.Save("my-key"); err != nil {
//	    log.Fatal(err)
//	}
//	key, err := store.Load()
package config
