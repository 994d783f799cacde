package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeNotFITS, "not a valid FITS file", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFITS, resp.Error.Code)
	assert.Equal(t, "not a valid FITS file", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"render_code": "SURFACE_MISSING"}
	err := formatter.Error(ErrCodeRenderFailed, "cannot find surface", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("Rendered m31.fits")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Rendered m31.fits")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error(ErrCodeNotFITS, "not a valid FITS file", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error ["+ErrCodeNotFITS+"]")
	assert.Contains(t, buf.String(), "not a valid FITS file")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"path": "m31.fits"}
	err := formatter.Error(ErrCodeNotFITS, "not a valid FITS file", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error ["+ErrCodeNotFITS+"]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Reading %s", "m31.fits")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Reading m31.fits")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    ErrCodeNoData,
		Message: "No data to display",
		Details: []string{"NAXIS = 0"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, ErrCodeNoData, decoded.Code)
	assert.Equal(t, "No data to display", decoded.Message)
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("session %s", "abc")
	assert.Empty(t, out.String())
	assert.Equal(t, "session abc\n", errOut.String())
}

func TestCLIResponse_SessionOmittedWhenEmpty(t *testing.T) {
	data, err := json.Marshal(CLIResponse{Status: "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))

	data, err = json.Marshal(CLIResponse{Status: "ok", Session: "s-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","session":"s-1"}`, string(data))
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitFailure},
		{"exit_failure", NewExitError(ExitFailure, "not FITS"), ExitFailure},
		{"command_error", WrapExitError(ExitCommandError, "cannot open", errors.New("missing")), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner")), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	err := WrapExitError(ExitCommandError, "failed to open journal", errors.New("disk full"))
	assert.Equal(t, "failed to open journal: disk full", err.Error())
	assert.Equal(t, "disk full", errors.Unwrap(err).Error())
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}
