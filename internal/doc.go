// Package internal contains the implementation packages of the kuvia CLI.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - gallery: ordered keyed list, image entries, the display surface
//     contract and the gallery controller
//   - tui: terminal display surface used by kuvia browse
//   - scanner: image discovery by pattern, directory and file name
//   - imagelist: image list script and remote JSON list fetch
//   - page: page template filling, header assembly and minification
//   - server: kuvia serve with its JSON list endpoint and live reload
//   - watcher: debounced file system monitoring for live reload
//   - config: viper-backed configuration and validation
//   - errors: typed errors shared by every package
//   - logging: structured logging on log/slog
//   - version: build information
//
// # Inter-Package Communication
//
//   - The controller drives a gallery.Surface and never touches I/O itself
//   - tui feeds key presses, image loads and history moves to the
//     controller from the bubbletea update loop
//   - scanner and imagelist produce the URL list every front end starts from
//   - server combines scanner, page and watcher for on-demand galleries
//
// # Testing Strategy
//
//   - Table-driven unit tests with testify
//   - Property tests behind the property build tag
//   - Goroutine leak checks for the watcher and the server
package internal
