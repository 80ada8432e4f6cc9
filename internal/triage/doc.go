// Package triage provides the business boundary for deskhive's AI ticket
// triage. It defines the Orchestrator (pure single-call LLM orchestration
// with strict response validation), the deterministic local Fallback, the
// Service (lifecycle, persistence, activity recording), the Store interface,
// the Provider contract for LLM backends, and the typed error taxonomy.
package triage
