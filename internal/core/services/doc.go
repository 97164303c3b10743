// Package services implements the driving ports: answering questions
// (retrieval, evidence selection, prompt assembly, generation and
// validation), ingestion, document management and history.
//
// Services depend only on domain types and driven ports.
package services
