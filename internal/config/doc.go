// Package config loads and watches the exporter configuration file.
//
// Load(path) reads the YAML file, applies defaults (port 9101, slug
// "metrics", 10s collect timeout, every family except bandwidth), then
// validates required fields and the collector family list. The router
// password may come from the file or from the environment variable named by
// password_env; ResolvedPassword prefers the environment.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename-then-create
// pattern used by atomic-save editors by re-adding the watch afterwards.
package config
