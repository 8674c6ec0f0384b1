// Package keystone scores how much a topic's position in the prerequisite
// graph should lift its selection priority.
package keystone

import "math"

const (
	KeystoneDependents = 5
	CategoryChildren   = 3

	MaxBoost      = 0.3
	CategoryBoost = 0.1
	BridgeBoost   = 0.05
)

type Reason string

const (
	ReasonKeystone Reason = "keystone"
	ReasonCategory Reason = "category"
	ReasonBridge   Reason = "bridge"
	ReasonLeaf     Reason = "leaf"
)

// Centrality is the graph shape around one topic. DependentCount counts
// topics that (transitively, within a bounded hop count) require it.
type Centrality struct {
	DependentCount int
	ChildCount     int
}

type Priority struct {
	Boost  float64
	Reason Reason
}

func Boost(c Centrality) Priority {
	switch {
	case c.DependentCount >= KeystoneDependents:
		return Priority{
			Boost:  math.Min(MaxBoost, 0.1+float64(c.DependentCount)/100),
			Reason: ReasonKeystone,
		}
	case c.ChildCount >= CategoryChildren:
		return Priority{Boost: CategoryBoost, Reason: ReasonCategory}
	case c.ChildCount > 0:
		return Priority{Boost: BridgeBoost, Reason: ReasonBridge}
	default:
		return Priority{Boost: 0, Reason: ReasonLeaf}
	}
}
