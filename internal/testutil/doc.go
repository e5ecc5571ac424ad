// Package testutil provides shared helpers for package tests: a module
// preloaded with the platform classpath, deterministic key generators for
// trampolines, a logical clock for run logs and a use/def consistency
// assertion.
package testutil
