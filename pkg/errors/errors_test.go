// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/monolink/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "missing_dependency_error",
			code:    errors.ErrMissingDependency,
			message: "no staged copy for lodash@1.0.0",
			wantStr: "[MISSING_DEPENDENCY] no staged copy for lodash@1.0.0",
		},
		{
			name:    "config_invalid_error",
			code:    errors.ErrConfigValid,
			message: "internal dependency has no matching project",
			wantStr: "[CONFIG_INVALID] internal dependency has no matching project",
		},
		{
			name:    "backend_invariant_error",
			code:    errors.ErrBackendInvariant,
			message: "shared install location is not a symlink",
			wantStr: "[BACKEND_INVARIANT] shared install location is not a symlink",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		format  string
		args    []interface{}
		wantMsg string
	}{
		{
			name:    "format_with_string",
			code:    errors.ErrInvalidInput,
			format:  "invalid value: %s",
			args:    []interface{}{"test"},
			wantMsg: "invalid value: test",
		},
		{
			name:    "format_with_multiple_args",
			code:    errors.ErrMissingDependency,
			format:  "project %s declares %s@%s but no staged copy exists",
			args:    []interface{}{"a", "lodash", "1.0.0"},
			wantMsg: "project a declares lodash@1.0.0 but no staged copy exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.Newf(tt.code, tt.format, tt.args...)

			if err.Message != tt.wantMsg {
				t.Errorf("Newf() message = %q, want %q", err.Message, tt.wantMsg)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrSymlinkCreate, "cannot create link")

		if err.Code != errors.ErrSymlinkCreate {
			t.Errorf("Wrap() code = %v, want %v", err.Code, errors.ErrSymlinkCreate)
		}

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[SYMLINK_CREATE] cannot create link: base error"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		err := errors.Wrap(nil, errors.ErrInternal, "internal error")
		if err != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})
}

func TestWithProjectAndDependency(t *testing.T) {
	err := errors.New(errors.ErrMissingDependency, "no staged copy").
		WithProject("a").
		WithDependency("lodash")

	if got := err.Details["project"]; got != "a" {
		t.Errorf("WithProject() detail = %v, want %q", got, "a")
	}
	if got := err.Details["dependency"]; got != "lodash" {
		t.Errorf("WithDependency() detail = %v, want %q", got, "lodash")
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
		want bool
	}{
		{
			name: "matching_code",
			err:  errors.New(errors.ErrFilesystemConflict, "real content in the way"),
			code: errors.ErrFilesystemConflict,
			want: true,
		},
		{
			name: "non_matching_code",
			err:  errors.New(errors.ErrFilesystemConflict, "real content in the way"),
			code: errors.ErrBackendInvariant,
			want: false,
		},
		{
			name: "plain_error",
			err:  stderrors.New("plain"),
			code: errors.ErrFilesystemConflict,
			want: false,
		},
		{
			name: "wrapped_in_fmt_chain",
			err:  errors.Wrap(errors.New(errors.ErrConfigValid, "stale graph"), errors.ErrInternal, "outer"),
			code: errors.ErrInternal,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.want {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(errors.New(errors.ErrManifestParse, "bad json")); got != errors.ErrManifestParse {
		t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrManifestParse)
	}
	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrUnknown)
	}
}

func TestErrorChaining(t *testing.T) {
	base := stderrors.New("disk full")
	mid := errors.Wrap(base, errors.ErrDirCreate, "cannot create node_modules")
	top := errors.Wrapf(mid, errors.ErrInternal, "linking project %s", "a")

	if !stderrors.Is(top, mid) {
		t.Error("errors.Is should find the middle error in the chain")
	}

	var linkErr *errors.LinkError
	if !stderrors.As(top, &linkErr) {
		t.Fatal("errors.As should extract a LinkError")
	}
	if linkErr.Code != errors.ErrInternal {
		t.Errorf("outermost code = %v, want %v", linkErr.Code, errors.ErrInternal)
	}
}
