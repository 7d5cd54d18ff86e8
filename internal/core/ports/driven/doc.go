// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). Services depend on these interfaces, never on
// concrete adapters, so every collaborator is independently substitutable
// with a mock in tests.
package driven
