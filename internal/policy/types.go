package policy

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidMethod = errors.New("invalid method")

// MethodKind names the mechanism used to create and remove snapshots of a section.
type MethodKind string

const (
	MethodCopy     MethodKind = "copy"
	MethodHardlink MethodKind = "hardlink"
	MethodBtrfs    MethodKind = "btrfs"
)

// ResolveMethod validates a method name from the config file.
func ResolveMethod(value string) (MethodKind, error) {
	switch kind := MethodKind(value); kind {
	case MethodCopy, MethodHardlink, MethodBtrfs:
		return kind, nil
	default:
		return "", fmt.Errorf("%w '%s'; must be copy, hardlink or btrfs", ErrInvalidMethod, value)
	}
}

// Snapshot is an existing snapshot directory discovered in a section.
type Snapshot struct {
	// Path is the full path of the snapshot directory.
	Path string
	// When is the timestamp parsed from the directory name.
	When time.Time
}

// Section is a fully resolved retention policy.
type Section struct {
	Name   string
	Method MethodKind
	Scheme Scheme
	// Offset is the number of days added to every timestamp before bucketing.
	Offset int
	// Amount is the maximum number of snapshots kept, always >= 1.
	Amount int
}
