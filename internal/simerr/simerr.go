// Package simerr classifies the fatal conditions a simulation run can hit
// (spec.md §7): each wraps a Kind so the facade can translate it into the
// right transport-level response without string matching.
package simerr

import "fmt"

// Kind enumerates the fatal conditions spec.md §7 names.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnserviceableTrip
	KindDuplicateInterfaceConnect
	KindMediumMismatch
	KindSocInvalid
	KindDistanceOracleMiss
)

func (k Kind) String() string {
	switch k {
	case KindUnserviceableTrip:
		return "unserviceable_trip"
	case KindDuplicateInterfaceConnect:
		return "duplicate_interface_connect"
	case KindMediumMismatch:
		return "medium_mismatch"
	case KindSocInvalid:
		return "soc_invalid"
	case KindDistanceOracleMiss:
		return "distance_oracle_miss"
	default:
		return "unknown"
	}
}

// Fatal is a typed error carrying the Kind of fatal condition that ended
// the run, plus the underlying cause if any.
type Fatal struct {
	Kind Kind
	Msg  string
	Err  error
}

// New builds a Fatal of kind with a message.
func New(kind Kind, msg string) *Fatal {
	return &Fatal{Kind: kind, Msg: msg}
}

// Wrap builds a Fatal of kind wrapping err.
func Wrap(kind Kind, msg string, err error) *Fatal {
	return &Fatal{Kind: kind, Msg: msg, Err: err}
}

func (f *Fatal) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Msg, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func (f *Fatal) Unwrap() error { return f.Err }
