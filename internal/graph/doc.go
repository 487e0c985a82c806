// Package graph implements the immutable DAG at the core of weaveflow:
// nodes with stable keys, dependency/dependent sets, and the Target
// sub-selection algebra used to scope execution and output operations.
//
// A Graph is built once from a collection of NodeBuilder values via New,
// validated for acyclicity, key uniqueness, and completeness, and is
// thereafter immutable and safe to share across concurrent Executions.
package graph
