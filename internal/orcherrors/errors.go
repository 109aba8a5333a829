// Package orcherrors defines the typed error taxonomy shared by every
// orchestrator subsystem. Each Kind maps to a stable process exit code so
// callers (shell scripts, systemd units, CI) can branch on failure class
// without scraping messages.
package orcherrors

import "fmt"

// Kind classifies an orchestrator failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindNode
	KindNodeNotRunning
	KindNodeAlreadyRunning
	KindNodeStartFailed
	KindNodeStopFailed
	KindUpdate
	KindSignatureInvalid
	KindHashMismatch
	KindSnapshot
	KindCertificateInvalid
	KindNetwork
	KindIO
	KindSerialization
	KindBinaryNotFound
	KindInsufficientDiskSpace
	KindProcess
	KindTimeout
	KindUnsupportedPlatform
)

// ExitCode returns the process exit code associated with a Kind. 0 is
// reserved for success and never returned here.
func (k Kind) ExitCode() int {
	switch k {
	case KindConfig:
		return 10
	case KindNode:
		return 20
	case KindNodeNotRunning:
		return 21
	case KindNodeAlreadyRunning:
		return 22
	case KindNodeStartFailed:
		return 23
	case KindNodeStopFailed:
		return 24
	case KindUpdate:
		return 30
	case KindSignatureInvalid:
		return 31
	case KindHashMismatch:
		return 32
	case KindSnapshot:
		return 40
	case KindCertificateInvalid:
		return 41
	case KindNetwork:
		return 50
	case KindIO:
		return 60
	case KindSerialization:
		return 61
	case KindBinaryNotFound:
		return 70
	case KindInsufficientDiskSpace:
		return 71
	case KindProcess:
		return 80
	case KindTimeout:
		return 81
	case KindUnsupportedPlatform:
		return 90
	default:
		return 1
	}
}

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNode:
		return "node"
	case KindNodeNotRunning:
		return "node_not_running"
	case KindNodeAlreadyRunning:
		return "node_already_running"
	case KindNodeStartFailed:
		return "node_start_failed"
	case KindNodeStopFailed:
		return "node_stop_failed"
	case KindUpdate:
		return "update"
	case KindSignatureInvalid:
		return "signature_invalid"
	case KindHashMismatch:
		return "hash_mismatch"
	case KindSnapshot:
		return "snapshot"
	case KindCertificateInvalid:
		return "certificate_invalid"
	case KindNetwork:
		return "network"
	case KindIO:
		return "io"
	case KindSerialization:
		return "serialization"
	case KindBinaryNotFound:
		return "binary_not_found"
	case KindInsufficientDiskSpace:
		return "insufficient_disk_space"
	case KindProcess:
		return "process"
	case KindTimeout:
		return "timeout"
	case KindUnsupportedPlatform:
		return "unsupported_platform"
	default:
		return "unknown"
	}
}

// Error is the single error type returned across package boundaries. It
// carries enough structure for callers to branch on its Kind while still
// rendering a readable message via Error().
type Error struct {
	Kind      Kind
	Operation string
	Message   string
	Err       error

	// Structured fields populated by specific Kinds. Left zero-valued
	// when not applicable.
	PID       int    // KindNodeAlreadyRunning
	LogTail   string // KindNodeStartFailed
	Expected  string // KindHashMismatch
	Actual    string // KindHashMismatch
	NeededMB  uint64 // KindInsufficientDiskSpace
	AvailMB   uint64 // KindInsufficientDiskSpace
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode is a convenience passthrough to Kind.ExitCode for callers that
// only have an error value, not the Kind.
func (e *Error) ExitCode() int { return e.Kind.ExitCode() }

// New builds a plain *Error with no wrapped cause.
func New(kind Kind, operation, message string) *Error {
	return &Error{Kind: kind, Operation: operation, Message: message}
}

// Wrap builds an *Error around an existing error, preserving it for
// errors.Unwrap / errors.Is chains.
func Wrap(kind Kind, operation, message string, err error) *Error {
	return &Error{Kind: kind, Operation: operation, Message: message, Err: err}
}

// NodeAlreadyRunning reports that a start was attempted while a node with
// the given PID is already alive.
func NodeAlreadyRunning(operation string, pid int) *Error {
	return &Error{
		Kind:      KindNodeAlreadyRunning,
		Operation: operation,
		Message:   fmt.Sprintf("node already running (pid %d)", pid),
		PID:       pid,
	}
}

// NodeStartFailed reports a failed background start, carrying the tail of
// the node's log file so the caller can surface it without re-reading the
// file.
func NodeStartFailed(operation, message, logTail string) *Error {
	return &Error{
		Kind:      KindNodeStartFailed,
		Operation: operation,
		Message:   message,
		LogTail:   logTail,
	}
}

// HashMismatch reports a downloaded artifact's digest not matching what
// was expected.
func HashMismatch(operation, expected, actual string) *Error {
	return &Error{
		Kind:      KindHashMismatch,
		Operation: operation,
		Message:   fmt.Sprintf("hash mismatch: expected %s, got %s", expected, actual),
		Expected:  expected,
		Actual:    actual,
	}
}

// InsufficientDiskSpace reports that fewer bytes are free than an
// operation needs, in MB.
func InsufficientDiskSpace(operation string, neededMB, availMB uint64) *Error {
	return &Error{
		Kind:      KindInsufficientDiskSpace,
		Operation: operation,
		Message:   fmt.Sprintf("insufficient disk space: need %d MB, have %d MB", neededMB, availMB),
		NeededMB:  neededMB,
		AvailMB:   availMB,
	}
}

// Is reports whether err (or any error in its Unwrap chain) is an *Error
// of the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if oe, ok := err.(*Error); ok && oe.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
