// Package policy resolves the effective transport policy for one build
// attempt by merging the explicit caller-set policy, the system policy
// service answer, and a compiled default.
package policy

import "github.com/lynxaudio/audiogate/api/audio"

// Compiled defaults applied when neither the caller nor the policy service
// produced a usable answer. Deliberately conservative: without policy data
// the low-latency path is not attempted.
const (
	DefaultTransportPolicy audio.TransportPolicy = audio.PolicyNever
	DefaultExclusivePolicy audio.TransportPolicy = audio.PolicyNever
)

// QueryFunc asks the system policy service for the per-device policy table
// of the given kind. Any error is treated as "no data".
type QueryFunc func(kind audio.PolicyKind) ([]audio.PolicyInfo, error)

// Resolve computes the effective policy for one build attempt.
// Priority: explicit caller setting, then the queried service table merged
// by Merge, then the compiled default for the kind.
func Resolve(explicit audio.TransportPolicy, query QueryFunc, kind audio.PolicyKind) audio.TransportPolicy {
	if explicit != audio.PolicyUnspecified {
		return explicit
	}
	resolved := audio.PolicyUnspecified
	if query != nil {
		if infos, err := query(kind); err == nil {
			resolved = Merge(infos)
		}
	}
	if resolved == audio.PolicyUnspecified {
		resolved = compiledDefault(kind)
	}
	return resolved
}

// Merge folds a policy table into a single policy. An empty table means the
// device set imposes no constraint and is treated as auto-negotiate. A table
// whose entries disagree is also auto: heterogeneous device support must
// never widen to a blanket allow or deny.
func Merge(infos []audio.PolicyInfo) audio.TransportPolicy {
	if len(infos) == 0 {
		return audio.PolicyAuto
	}
	first := infos[0].Policy
	for _, info := range infos[1:] {
		if info.Policy != first {
			return audio.PolicyAuto
		}
	}
	return first
}

func compiledDefault(kind audio.PolicyKind) audio.TransportPolicy {
	if kind == audio.PolicyKindExclusive {
		return DefaultExclusivePolicy
	}
	return DefaultTransportPolicy
}
