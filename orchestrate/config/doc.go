// Package config holds the configuration structs for the orchestration
// layer: the hub and the workflow patterns.
//
// Each struct follows the same convention as the rest of the module:
// JSON-friendly fields, a Default*Config constructor, and a Merge method
// that overlays non-zero values from a source config. Configs are read
// during initialization and then handed to the components that consume
// them; they are not live objects.
package config
