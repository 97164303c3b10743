// Package mcp serves the clause answering pipeline over the Model Context Protocol.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")

// ErrEmptyBatch is returned when ask_batch is called without queries.
var ErrEmptyBatch = errors.New("mcp: ask_batch needs at least one query")
