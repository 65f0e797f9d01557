package toolset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKnownDefaults(t *testing.T) {
	tools := Known()

	require.Equal(t, []string{"mypy", "pyright", "pyrefly", "ty"}, EnabledNames(tools))
	require.Equal(t, "ruff", tools[len(tools)-1].Name)
	require.False(t, tools[len(tools)-1].Enabled)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		enable  []string
		disable []string
		want    []string
		wantErr bool
	}{
		{
			name: "defaults",
			want: []string{"mypy", "pyright", "pyrefly", "ty"},
		},
		{
			name:   "enableRuff",
			enable: []string{"ruff"},
			want:   []string{"mypy", "pyright", "pyrefly", "ty", "ruff"},
		},
		{
			name:    "disableSome",
			disable: []string{"pyright", "ty"},
			want:    []string{"mypy", "pyrefly"},
		},
		{
			name:    "disableWinsOverEnable",
			enable:  []string{"ruff"},
			disable: []string{"ruff"},
			want:    []string{"mypy", "pyright", "pyrefly", "ty"},
		},
		{
			name:    "unknownEnableName",
			enable:  []string{"eslint"},
			wantErr: true,
		},
		{
			name:    "unknownDisableName",
			disable: []string{"flake9"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools, err := Resolve(tt.enable, tt.disable)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, EnabledNames(tools))
		})
	}
}

func TestResolveDoesNotMutateKnown(t *testing.T) {
	_, err := Resolve(nil, []string{"mypy"})
	require.NoError(t, err)

	require.True(t, Known()[0].Enabled, "Known must return a fresh registry every call")
}
