package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCreateAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENVIRONMENT", "testing")

	out, err := runCommand(t, "create-admin", "--username", "owner", "--email", "Owner@Example.com", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Admin created!")
	assert.Contains(t, out, "Email: owner@example.com")
}

func TestCreateAdmin_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENVIRONMENT", "testing")

	_, err := runCommand(t, "create-admin", "--username", "ow", "--email", "owner@example.com", "--password", "secret123")
	assert.Error(t, err)
}

func TestMigrateLanguages(t *testing.T) {
	t.Setenv("ENVIRONMENT", "testing")

	out, err := runCommand(t, "migrate-languages", "--kind", "news", "--kind", "faq", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")
	assert.Contains(t, out, "news")
	assert.Contains(t, out, "faq")
}

func TestMigrateLanguages_UnknownKind(t *testing.T) {
	t.Setenv("ENVIRONMENT", "testing")

	_, err := runCommand(t, "migrate-languages", "--kind", "blog")
	assert.Error(t, err)
}

func TestTranslateBackfill_RequiresProvider(t *testing.T) {
	t.Setenv("ENVIRONMENT", "testing")
	t.Setenv("MYMEMORY_DISABLED", "true")

	_, err := runCommand(t, "translate-backfill", "--kind", "news")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no translation provider")
}

func TestTranslateBackfill_RequiresKind(t *testing.T) {
	t.Setenv("ENVIRONMENT", "testing")

	_, err := runCommand(t, "translate-backfill")
	assert.Error(t, err)
}
