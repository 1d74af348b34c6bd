// Package infra contains technical adapters such as run loggers backed by
// external services, metrics exporters and error reporting. These packages
// depend only on the interfaces defined in the core packages.
package infra
