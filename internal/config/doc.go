// Package config loads the xiview configuration.
//
// Configuration lives in a single TOML file, by default
// ~/.config/xiview/config.toml. Missing keys take their values from
// Default, and a few keys can be overridden from the environment:
//
//	XIVIEW_BROKER_URL    engine.broker_url
//	XIVIEW_LOG_LEVEL     log.level
//	XIVIEW_CORE_PATH     broker.core_path
//
// # Sections
//
//	[engine]       where the broker lives and which file to open
//	[view]         line metrics and caret policy
//	[input]        drag sampling and an optional Lua keymap script
//	[preferences]  engine preferences written once per session
//	[log]          level and log file
//	[broker]       listen address and engine command
//
// # Live Reload
//
// Watch re-reads the file whenever it is written and hands every valid
// result to a callback:
//
//	err := config.Watch(ctx, path, func(cfg *config.Config) {
//	    logger.SetLevel(logging.ParseLevel(cfg.Log.Level))
//	}, logger)
//
// Invalid edits are logged and ignored, so the running configuration is
// always one that passed Validate.
package config
