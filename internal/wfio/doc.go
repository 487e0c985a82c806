// Package wfio provides filesystem-backed reference implementations of
// graph.Task and graph.Output, grounded in the teacher's
// internal/projectintegration/engine/workspace filesystem conventions
// (explicit, no environment-derived lookups; errors wrap a sentinel for
// errors.Is checks).
package wfio
