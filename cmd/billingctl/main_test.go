package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	cmds := []struct {
		name string
		use  string
	}{
		{"migrate", "migrate"},
		{"sweep", "sweep"},
		{"import-payments", "import-payments <file.csv>"},
	}

	built := map[string]string{
		"migrate":         newMigrateCmd().Use,
		"sweep":           newSweepCmd().Use,
		"import-payments": newImportCmd().Use,
	}
	for _, tt := range cmds {
		assert.Equal(t, tt.use, built[tt.name])
	}
}

func TestImportCommandRequiresFileArg(t *testing.T) {
	cmd := newImportCmd()
	require.NotNil(t, cmd.Args)
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"payments.csv"}))
}
