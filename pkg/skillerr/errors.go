// Package skillerr defines the error type shared by every skillhub component.
// Errors are classified by Kind (the broad taxonomy callers branch on) and Code
// (the specific failure), and carry structured context such as the offending
// path or the captured output of an external tool.
package skillerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the broad class of a failure.
type Kind string

// Error kinds
const (
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindAlreadyExists Kind = "already_exists"
	KindNotFound      Kind = "not_found"
	KindExternalTool  Kind = "external_tool"
	KindFilesystem    Kind = "filesystem"
)

// Code identifies a specific failure within a Kind.
type Code string

// Error codes
const (
	CodeNoHomeDirectory     Code = "NO_HOME_DIRECTORY"
	CodeUnsupportedPlatform Code = "UNSUPPORTED_PLATFORM"
	CodeNoPlatformsDetected Code = "NO_PLATFORMS_DETECTED"
	CodeInvalidConfig       Code = "INVALID_CONFIG"

	CodeInvalidIdentifier  Code = "INVALID_IDENTIFIER"
	CodeInvalidRepository  Code = "INVALID_REPOSITORY"
	CodeInvalidSubPath     Code = "INVALID_SUB_PATH"
	CodeBlankField         Code = "BLANK_FIELD"
	CodeUnsafePath         Code = "UNSAFE_PATH"
	CodeIdentifierMismatch Code = "IDENTIFIER_MISMATCH"

	CodeAlreadyInstalled  Code = "ALREADY_INSTALLED"
	CodeInstallInProgress Code = "INSTALL_IN_PROGRESS"

	CodeSourcePathNotFound  Code = "SOURCE_PATH_NOT_FOUND"
	CodeInstallPathNotFound Code = "INSTALL_PATH_NOT_FOUND"

	CodeToolFailed      Code = "TOOL_FAILED"
	CodeToolUnavailable Code = "TOOL_UNAVAILABLE"
	CodeToolTimeout     Code = "TOOL_TIMEOUT"
	CodeCanceled        Code = "CANCELED"

	CodeIO Code = "IO"
)

// Error is a classified skillhub failure.
type Error struct {
	Kind    Kind
	Code    Code
	Message string

	Platform   string
	Identifier string
	Path       string
	SubPath    string
	Allowed    []string

	Tool   string
	Args   []string
	Stdout string
	Stderr string

	Hint string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.Message)

	if e.Kind == KindExternalTool && (e.Stdout != "" || e.Stderr != "") {
		if s := strings.TrimSpace(e.Stdout); s != "" {
			fmt.Fprintf(&b, "\nstdout:\n%s", s)
		}
		if s := strings.TrimSpace(e.Stderr); s != "" {
			fmt.Fprintf(&b, "\nstderr:\n%s", s)
		}
	}

	if e.Hint != "" {
		fmt.Fprintf(&b, " (%s)", e.Hint)
	}

	if e.Err != nil && e.Code != CodeToolFailed {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

// Unwrap returns the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Cause satisfies the github.com/pkg/errors causer interface.
func (e *Error) Cause() error {
	return e.Unwrap()
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var out *Error
	if errors.As(err, &out) && out != nil {
		return out, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or "" if err is not a classified error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// CodeOf returns the Code of err, or "" if err is not a classified error.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// NoHomeDirectory reports that no usable home directory variable is set.
func NoHomeDirectory(vars ...string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Code:    CodeNoHomeDirectory,
		Message: fmt.Sprintf("unable to locate user home directory (%s)", strings.Join(vars, "/")),
	}
}

// UnsupportedPlatform reports an unknown platform key.
func UnsupportedPlatform(key string, allowed []string) *Error {
	return &Error{
		Kind:     KindConfiguration,
		Code:     CodeUnsupportedPlatform,
		Message:  fmt.Sprintf("unsupported platform %q: must be one of %s", key, strings.Join(allowed, "/")),
		Platform: key,
		Allowed:  append([]string(nil), allowed...),
	}
}

// NoPlatformsDetected reports that no agent platform exists on this machine.
func NoPlatformsDetected(allowed []string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Code:    CodeNoPlatformsDetected,
		Message: fmt.Sprintf("no agent platform detected on this machine (looked for %s)", strings.Join(allowed, "/")),
		Allowed: append([]string(nil), allowed...),
	}
}

// InvalidIdentifier reports an unusable skill identifier.
func InvalidIdentifier(id, reason string) *Error {
	return &Error{
		Kind:       KindValidation,
		Code:       CodeInvalidIdentifier,
		Message:    fmt.Sprintf("invalid skill id %q: %s", id, reason),
		Identifier: id,
	}
}

// InvalidRepository reports an unusable repository source.
func InvalidRepository(repo, reason string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidRepository,
		Message: fmt.Sprintf("invalid repository %q: %s", repo, reason),
	}
}

// InvalidSubPath reports a sub-path that would escape the repository.
func InvalidSubPath(subPath, reason string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidSubPath,
		Message: fmt.Sprintf("invalid sub-path %q: %s", subPath, reason),
		SubPath: subPath,
	}
}

// BlankField reports a required field that was empty.
func BlankField(field string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeBlankField,
		Message: fmt.Sprintf("%s cannot be empty", field),
	}
}

// UnsafePath reports a path outside every recognized skills directory.
func UnsafePath(path string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeUnsafePath,
		Message: fmt.Sprintf("path %s is not inside a recognized skills directory", path),
		Path:    path,
	}
}

// IdentifierMismatch reports a path whose final segment is not the skill id.
func IdentifierMismatch(id, path string) *Error {
	return &Error{
		Kind:       KindValidation,
		Code:       CodeIdentifierMismatch,
		Message:    fmt.Sprintf("path %s does not match skill id %q", path, id),
		Identifier: id,
		Path:       path,
	}
}

// AlreadyInstalled reports an existing install target.
func AlreadyInstalled(id, path string) *Error {
	return &Error{
		Kind:       KindAlreadyExists,
		Code:       CodeAlreadyInstalled,
		Message:    fmt.Sprintf("skill %q appears to be already installed at %s", id, path),
		Identifier: id,
		Path:       path,
	}
}

// InstallInProgress reports that another process holds the install lock.
func InstallInProgress(id, path string, err error) *Error {
	return &Error{
		Kind:       KindAlreadyExists,
		Code:       CodeInstallInProgress,
		Message:    fmt.Sprintf("another install of %q into %s is in progress", id, path),
		Identifier: id,
		Path:       path,
		Err:        err,
	}
}

// SourcePathNotFound reports a sub-path missing from the fetched repository.
func SourcePathNotFound(path, subPath, hint string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeSourcePathNotFound,
		Message: fmt.Sprintf("sparse checkout directory does not exist: %s (requested sub-path %q)", path, subPath),
		Path:    path,
		SubPath: subPath,
		Hint:    hint,
	}
}

// InstallPathNotFound reports an uninstall target that does not exist.
func InstallPathNotFound(path string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeInstallPathNotFound,
		Message: fmt.Sprintf("install path %s does not exist, it may already be removed", path),
		Path:    path,
	}
}

// ToolFailed reports a non-zero exit of an external tool.
func ToolFailed(tool string, args []string, stdout, stderr string, err error) *Error {
	return &Error{
		Kind:    KindExternalTool,
		Code:    CodeToolFailed,
		Message: fmt.Sprintf("%s command failed: %s", tool, strings.TrimSpace(tool+" "+strings.Join(args, " "))),
		Tool:    tool,
		Args:    append([]string(nil), args...),
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// ToolUnavailable reports an external tool that could not be started.
func ToolUnavailable(tool string, err error) *Error {
	return &Error{
		Kind:    KindExternalTool,
		Code:    CodeToolUnavailable,
		Message: fmt.Sprintf("failed to execute %s", tool),
		Tool:    tool,
		Err:     err,
	}
}

// ToolTimeout reports an external tool killed after its deadline.
func ToolTimeout(tool string, args []string, err error) *Error {
	return &Error{
		Kind:    KindExternalTool,
		Code:    CodeToolTimeout,
		Message: fmt.Sprintf("%s command timed out: %s", tool, strings.TrimSpace(tool+" "+strings.Join(args, " "))),
		Tool:    tool,
		Args:    append([]string(nil), args...),
		Err:     err,
	}
}

// Canceled reports an operation abandoned because its context was cancelled.
func Canceled(tool string, err error) *Error {
	return &Error{
		Kind:    KindExternalTool,
		Code:    CodeCanceled,
		Message: fmt.Sprintf("%s command canceled", tool),
		Tool:    tool,
		Err:     err,
	}
}

// Filesystem reports a local filesystem failure.
func Filesystem(op, path string, err error) *Error {
	return &Error{
		Kind:    KindFilesystem,
		Code:    CodeIO,
		Message: fmt.Sprintf("failed to %s %s", op, path),
		Path:    path,
		Err:     err,
	}
}

// Configuration reports an unreadable or invalid configuration value.
func Configuration(message string, err error) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Code:    CodeInvalidConfig,
		Message: message,
		Err:     err,
	}
}
