// SPDX-License-Identifier: GPL-2.0-or-later

package pfftree

// Sentinel errors returned by this package.  Each is wrapped with
// fmt.Errorf("...: %w", ...) at the call site that detects the
// condition, so callers should use errors.Is against these values
// rather than comparing errors directly.
var (
	// ErrInvalidArgument is returned when a caller passes a
	// node or search depth that is structurally unusable (for
	// example, a nil node or a negative recursion depth).
	ErrInvalidArgument = kind("invalid argument")

	// ErrAlreadySet is returned by InsertChildUnique and
	// InsertSubtreeUnique when a child keyed by the same descriptor
	// identifier already exists, and by Tree.SetRootFolder when a
	// root folder with a different identifier is already installed.
	ErrAlreadySet = kind("already set")

	// ErrOutOfBounds is returned when a recursive operation would
	// exceed MaxDepth, or when a value read from a DescriptorsIndex
	// is outside the range this package can represent.
	ErrOutOfBounds = kind("out of bounds")

	// ErrMissing is returned when a value the build needs is absent,
	// such as a leaf for which ReadValue returns nil. Lookups
	// (FindByIdentifier, FindDirectChild) report a miss through
	// their boolean result instead.
	ErrMissing = kind("missing")

	// ErrInitializationFailed names the failure to construct a
	// collaborator. No function in this module returns it; a Tree
	// made by NewTree always has its root.
	ErrInitializationFailed = kind("initialization failed")
)

// kind is a comparable error value usable directly with errors.Is,
// the same shape as btrfstree's errNotExist/notExistError pair but
// collapsed to one type since this package does not need per-error
// Is-aliasing to a stdlib sentinel.
type kind string

func (e kind) Error() string { return string(e) }
