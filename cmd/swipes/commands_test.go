package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCLI points a fresh viper at a temp database and returns a runner for commands.
func setupCLI(t *testing.T) func(args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	viper.Set("database.path", filepath.Join(t.TempDir(), "swipes.db"))
	viper.Set("identity.secret", "test-secret-test-secret-test-secret")
	viper.Set("timezone", "UTC")
	viper.Set("logging.level", "error")

	return func(args ...string) (string, error) {
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(args)
		err := root.Execute()
		return out.String(), err
	}
}

func TestCLI_PurchaseFlow(t *testing.T) {
	run := setupCLI(t)

	out, err := run("token", "issue", "--sub", "ada", "--name", "Ada Lovelace")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	out, err = run("--token", token, "token", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "Ada Lovelace")

	out, err = run("--token", token, "onboard", "--tier", "first-year", "--leaderboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Ada Lovelace!")

	out, err = run("--token", token, "purchase", "log",
		"--pay", "dining", "--total", "4.20", "--store", "Campus Market",
		"--item", "Cold Brew Coffee", "--idempotency-key", "tap-1")
	require.NoError(t, err)
	assert.Contains(t, out, "$295.80")

	// Same key again charges nothing.
	out, err = run("--token", token, "purchase", "log",
		"--pay", "dining", "--total", "4.20", "--item", "Cold Brew Coffee", "--idempotency-key", "tap-1")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing was charged")
	assert.Contains(t, out, "$295.80")

	out, err = run("--token", token, "history")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Cold Brew Coffee"))

	out, err = run("--token", token, "dashboard", "--pay", "dining")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")

	out, err = run("leaderboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
}

func TestCLI_Errors(t *testing.T) {
	run := setupCLI(t)

	_, err := run("onboard", "--tier", "first-year")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "No identity token")

	out, err := run("token", "issue", "--sub", "grace")
	require.NoError(t, err)
	token := strings.TrimSpace(out)

	_, err = run("--token", token, "purchase", "log", "--pay", "dining", "--total", "1", "--item", "Bagel")
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = run("--token", token, "onboard", "--tier", "off-campus")
	require.NoError(t, err)

	_, err = run("--token", token, "purchase", "log", "--pay", "credits", "--total", "1000", "--item", "Laptop")
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)

	_, err = run("--token", "not-a-token", "balance")
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "rejected")
}

func TestCLI_MigrateStatusAndSnapshots(t *testing.T) {
	run := setupCLI(t)

	out, err := run("migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")
	assert.Contains(t, out, "Migrations pending")

	_, err = run("migrate")
	require.NoError(t, err)

	out, err = run("snapshot", "create", "--tag", "before-spring", "--description", "rollover")
	require.NoError(t, err)
	assert.Contains(t, out, "before-spring")

	out, err = run("snapshot", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "before-spring")
	assert.Contains(t, out, "rollover")

	_, err = run("snapshot", "restore", "before-spring", "--yes")
	require.NoError(t, err)

	_, err = run("snapshot", "delete", "before-spring")
	require.NoError(t, err)

	_, err = run("snapshot", "delete", "before-spring")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
}

func TestVersionCmd(t *testing.T) {
	run := setupCLI(t)
	out, err := run("version")
	require.NoError(t, err)
	assert.Equal(t, "swipes dev\n", out)
}
