package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, buf *bytes.Buffer) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	return resp
}

func TestOutputFormatter_JSON(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}

		require.NoError(t, f.Success(map[string]int{"methods": 3}))
		resp := decodeResponse(t, buf)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, map[string]any{"methods": float64(3)}, resp.Data)
		assert.Nil(t, resp.Error)
	})

	t.Run("error with details", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}

		require.NoError(t, f.Error(ErrCodeLoadFailed, "program failed to load", []string{"dead.yaml:4"}))
		resp := decodeResponse(t, buf)
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeLoadFailed, resp.Error.Code)
		assert.Equal(t, "program failed to load", resp.Error.Message)
		assert.Equal(t, []any{"dead.yaml:4"}, resp.Error.Details)
		assert.Nil(t, resp.Data)
	})
}

func TestOutputFormatter_Text(t *testing.T) {
	details := map[string]string{"file": "dead.yaml"}
	tests := []struct {
		name    string
		verbose bool
		write   func(f *OutputFormatter) error
		want    string
	}{
		{"plain value", false, func(f *OutputFormatter) error { return f.Success("all methods verified") }, "all methods verified\n"},
		{"texter", false, func(f *OutputFormatter) error { return f.Success(listing("a\nb\n")) }, "a\nb\n"},
		{"error", false, func(f *OutputFormatter) error { return f.Error("E001", "program failed to load", details) }, "Error [E001]: program failed to load\n"},
		{"error verbose", true, func(f *OutputFormatter) error { return f.Error("E001", "program failed to load", details) }, "Error [E001]: program failed to load\nDetails: map[file:dead.yaml]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}
			require.NoError(t, tt.write(f))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

type listing string

func (l listing) Text() string { return string(l) }

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name             string
		verbose          bool
		split            bool
		wantOut, wantErr string
	}{
		{"quiet", false, true, "", ""},
		{"to writer", true, false, "loading dead.yaml\n", ""},
		{"to err writer", true, true, "", "loading dead.yaml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: out, Verbose: tt.verbose}
			if tt.split {
				f.ErrWriter = errOut
			}
			f.VerboseLog("loading %s", "dead.yaml")
			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantErr, errOut.String())
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	err := f.Fail(ExitCommandError, ErrCodeNotFound, "program not found", nil)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.True(t, exitErr.Reported)
	assert.Equal(t, ErrCodeNotFound, decodeResponse(t, buf).Error.Code)
}

func TestGetExitCode(t *testing.T) {
	denied := errors.New("denied")
	wrapped := WrapExitError(ExitCommandError, "open", denied)

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.Join(errors.New("outer"), wrapped)))
	assert.Equal(t, "open: denied", wrapped.Error())
	assert.ErrorIs(t, wrapped, denied)
	assert.Equal(t, "bare", (&ExitError{Message: "bare"}).Error())
}
