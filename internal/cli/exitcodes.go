package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/docrender/pkg/fsutil"
)

// ErrUsage marks invalid flags and arguments.
var ErrUsage = errors.New("invalid usage")

// Exit codes for docrender.
const (
	// ExitSuccess indicates every document rendered cleanly.
	ExitSuccess = 0

	// ExitRenderErrors indicates a document failed to render, had broken
	// assets, or is not natively renderable under capability --strict.
	ExitRenderErrors = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCode maps the error returned by a command onto an exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrRenderFailed), errors.Is(err, ErrNotNative):
		return ExitRenderErrors
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission),
		errors.Is(err, fsutil.ErrIsDirectory):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// IsReported reports whether err only signals an outcome the command has
// already printed, so it need not be logged again.
func IsReported(err error) bool {
	return errors.Is(err, ErrRenderFailed) || errors.Is(err, ErrNotNative)
}
