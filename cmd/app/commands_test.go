package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEnvCmd(t *testing.T) {
	t.Setenv("ENV_SCHEMA_VERSION", "1.0")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("API_KEY", "generate_with_openssl_rand_hex_32")

	var out bytes.Buffer
	cmd := checkEnvCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "WARNING: API_KEY")
	assert.Contains(t, out.String(), "Environment OK")
}

func TestCheckEnvCmd_MissingVersion(t *testing.T) {
	t.Setenv("ENV_SCHEMA_VERSION", "")
	t.Setenv("API_KEY", "k")

	cmd := checkEnvCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENV_SCHEMA_VERSION")
}
