package app

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sha1n/washer/internal/config"
	"github.com/spf13/pflag"
)

// noopValidate is a no-op validation function for tests
func noopValidate(*config.Settings) error {
	return nil
}

func TestRunParams_ErrorCases(t *testing.T) {
	valid := func(*pflag.FlagSet) (*config.Settings, error) {
		return &config.Settings{IndexDir: t.TempDir(), LogLevel: "warn", Color: config.ColorNever}, nil
	}

	tests := []struct {
		name           string
		params         RunParams
		args           []string
		wantErrContain string
	}{
		{
			name: "LoadSettings error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return nil, errors.New("settings error")
				},
				ValidSettings: noopValidate,
			},
			args:           []string{"search", "apple"},
			wantErrContain: "failed to load settings",
		},
		{
			name: "ValidSettings error",
			params: RunParams{
				LoadSettings: valid,
				ValidSettings: func(*config.Settings) error {
					return errors.New("validation error")
				},
			},
			args:           []string{"info"},
			wantErrContain: "invalid configuration",
		},
		{
			name: "color mode error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return &config.Settings{Color: "sometimes"}, nil
				},
				ValidSettings: noopValidate,
			},
			args:           []string{"info"},
			wantErrContain: "invalid configuration",
		},
		{
			name: "unknown encoding",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					s, _ := valid(nil)
					s.Index.Encodings = []string{"no-such-encoding"}
					return s, nil
				},
				ValidSettings: noopValidate,
			},
			args:           []string{"index", "a.txt"},
			wantErrContain: "invalid configuration",
		},
		{
			name: "unknown operator",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					s, _ := valid(nil)
					s.Search.DefaultOperator = "xor"
					return s, nil
				},
				ValidSettings: noopValidate,
			},
			args:           []string{"search", "apple"},
			wantErrContain: "invalid configuration",
		},
		{
			name: "missing index",
			params: RunParams{
				LoadSettings:  valid,
				ValidSettings: noopValidate,
			},
			args:           []string{"search", "apple"},
			wantErrContain: "no index found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.LogOutput = io.Discard
			cmd := NewRootCommand("washer", "test", tt.params)
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrContain) {
				t.Errorf("Expected error to contain %q, got: %v", tt.wantErrContain, err)
			}
		})
	}
}

func TestDefaultRunParams(t *testing.T) {
	params := DefaultRunParams()

	if params.LoadSettings == nil {
		t.Error("Expected LoadSettings to be set")
	}
	if params.ValidSettings == nil {
		t.Error("Expected ValidSettings to be set")
	}
	if params.LogOutput == nil {
		t.Error("Expected LogOutput to be set")
	}
}
