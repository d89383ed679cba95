// Package repositories implements SQLite persistence for homedeck's client-local state.
//
// Only display preferences are stored locally; everything else lives on the servers.
//
// Key Implementations:
//   - [PreferenceRepository] : scope/key/value preferences such as the device dashboard theme
package repositories
