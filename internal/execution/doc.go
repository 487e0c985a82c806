// Package execution drives a graph.Target to completion by dispatching
// TaskNodes to an external TaskScheduler, propagating readiness through
// the graph as dependencies succeed, and aggregating failures per the
// exception-priority rules in DESIGN.md. It also defines the freeze/thaw
// snapshot contract (Frozen) and the three construction factories
// (New, NewSkippingFresh, Thaw).
package execution
