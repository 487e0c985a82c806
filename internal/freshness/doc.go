// Package freshness implements the OutputAnalyzer and OutputRemover
// collaborators from spec §4.3-4.4: deciding which nodes of a Target must
// be re-executed given the current timestamps of their declared outputs,
// and deleting outputs for a batch of nodes under a labelled reason.
package freshness
