package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "statscard", cmd.Use)
	assert.True(t, cmd.SilenceErrors, "main.go owns error printing")

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "generate")
	assert.Contains(t, names, "setup")
	assert.Contains(t, names, "version")
}

func TestGenerateCmdRebuildFlag(t *testing.T) {
	cmd := newGenerateCmd()

	flag := cmd.Flags().Lookup("rebuild")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestSilentError(t *testing.T) {
	inner := fmt.Errorf("already reported")
	err := NewSilentError(inner)

	assert.Equal(t, "already reported", err.Error())
	assert.True(t, errors.Is(err, inner))

	var silent *SilentError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &silent))
}
