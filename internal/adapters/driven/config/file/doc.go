// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: config.toml in the clause home directory
//   - PromptStore: editable answer prompt templates
package file
