package freshness

import "weaveflow/internal/graph"

// RemoveInvalidOutput analyzes target and deletes the outputs of every
// invalid node, labelled PREDATES_DEPENDENCY. It returns the analysis
// result alongside any deletion error so a caller can still inspect what
// was found invalid even if cleanup partially failed.
func RemoveInvalidOutput(target *graph.Target, filter RemovalFilter) (invalid NodeSet, timestamps TimestampMap, removeErr error) {
	invalid, timestamps, err := Analyze(target)
	if err != nil {
		return nil, nil, err
	}
	removeErr = RemoveOutputs(invalid.Slice(target.Nodes()), ReasonPredatesDependency, filter)
	return invalid, timestamps, removeErr
}
