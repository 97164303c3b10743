// Package connectors holds the sources documents are read from before
// ingestion. Only the local filesystem is supported.
package connectors
