// Package cmd provides the command-line interface for kuvia.
//
// The root command generates a gallery page; subcommands serve, browse and
// inspect galleries.
//
// # Available Commands
//
//   - (root): scan for images and write a self-contained gallery page
//   - serve: serve a directory as a gallery with an on-demand image list
//   - browse: view a gallery in the terminal
//   - list: print the image list as a JSON array
//   - config show, config validate: inspect the effective configuration
//   - version: print build information
//
// # Command Examples
//
//	// Gallery of every image below photos/, written to a file
//	kuvia -r -d photos -o index.html
//
//	// Gallery whose list is fetched when the page loads
//	kuvia --json https://example.com/images.json > index.html
//
//	// Serve the current directory and reload on changes
//	kuvia serve --watch
//
//	// Browse a directory in the terminal, starting at the third image
//	kuvia browse -d photos --start 2
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (KUVIA_*)
//  3. Configuration file (--config, KUVIA_CONFIG_FILE or .kuvia.yml)
//  4. Default values (lowest priority)
package cmd
