package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"weaveflow/internal/execution"
	"weaveflow/internal/graph"
)

// ErrDigestMismatch is returned by Load when the supplied graph's
// structural digest does not match the one recorded in the snapshot,
// meaning the snapshot was taken against a different graph.
var ErrDigestMismatch = errors.New("snapshot: graph digest mismatch")

type statusJSON struct {
	State string      `json:"state"`
	Token interface{} `json:"token,omitempty"`
}

type envelope struct {
	GraphDigest string                `json:"graph_digest"`
	Statuses    map[string]statusJSON `json:"status"`
}

var stateNames = map[graph.NodeState]string{
	graph.StateIrrelevant: "IRRELEVANT",
	graph.StateNotReady:   "NOT_READY",
	graph.StateReady:      "READY",
	graph.StateScheduled:  "SCHEDULED",
	graph.StateSucceeded:  "SUCCEEDED",
	graph.StateFailed:     "FAILED",
}

var namesToState = func() map[string]graph.NodeState {
	m := make(map[string]graph.NodeState, len(stateNames))
	for st, name := range stateNames {
		m[name] = st
	}
	return m
}()

// Save writes frozen's envelope as JSON to w.
func Save(w io.Writer, frozen *execution.Frozen) error {
	digest, err := Digest(frozen.Graph)
	if err != nil {
		return fmt.Errorf("snapshot: computing digest: %w", err)
	}

	env := envelope{GraphDigest: digest, Statuses: make(map[string]statusJSON, len(frozen.Statuses))}
	for key, st := range frozen.Statuses {
		name, ok := stateNames[st.State]
		if !ok {
			return fmt.Errorf("snapshot: node %q has unknown state %v", key, st.State)
		}
		env.Statuses[key] = statusJSON{State: name, Token: st.Token}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// Load reads an envelope from r and reconstructs a Frozen against g,
// failing with ErrDigestMismatch if g's structural digest does not match
// the one the envelope was saved with.
func Load(r io.Reader, g *graph.Graph) (*execution.Frozen, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("snapshot: decoding envelope: %w", err)
	}

	digest, err := Digest(g)
	if err != nil {
		return nil, fmt.Errorf("snapshot: computing digest: %w", err)
	}
	if digest != env.GraphDigest {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrDigestMismatch, digest, env.GraphDigest)
	}

	statuses := make(map[string]graph.Status, len(env.Statuses))
	for key, sj := range env.Statuses {
		state, ok := namesToState[sj.State]
		if !ok {
			return nil, fmt.Errorf("snapshot: node %q has unknown state %q", key, sj.State)
		}
		if state == graph.StateScheduled && sj.Token != nil {
			statuses[key] = graph.StatusWithToken(sj.Token)
			continue
		}
		statuses[key] = graph.NewStatus(state)
	}

	return &execution.Frozen{Graph: g, Statuses: statuses}, nil
}
