// Package config loads engine and pipeline settings from YAML or JSON files
// into an untyped map with type-coercing accessors.
//
// Keys support dotted paths into nested maps, so a file like
//
//	engine:
//	  max_steps: 200
//	pipeline:
//	  max_revisions: 2
//
// is read with cfg.Int("engine.max_steps", 1000). Accessors never fail; a
// missing or mistyped value yields the caller's default.
package config
