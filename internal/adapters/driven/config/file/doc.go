// Package file provides file-based configuration and prompt stores.
//
// Configuration lives in a TOML file; prompts are user-editable text
// files with embedded defaults, optionally hot-reloaded on edit.
package file
