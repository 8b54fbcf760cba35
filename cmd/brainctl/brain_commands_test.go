package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand(t *testing.T) {
	app := newApp()

	err := app.Run([]string{"brainctl", "--json", "validate", "Coffee", "25", "SAR"})
	require.NoError(t, err)
}

func TestParseCommand(t *testing.T) {
	app := newApp()

	err := app.Run([]string{"brainctl", "--json", "parse", "Paid", "SAR", "45.50", "at", "Starbucks"})
	require.NoError(t, err)
}

func TestParseCommand_InvalidText(t *testing.T) {
	app := newApp()

	err := app.Run([]string{"brainctl", "parse", "Your", "OTP", "is", "123456"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not validate")
}

func TestParseCommand_MissingArgument(t *testing.T) {
	app := newApp()

	err := app.Run([]string{"brainctl", "parse"})
	require.Error(t, err)
}

func TestCategoriesCommand(t *testing.T) {
	app := newApp()

	err := app.Run([]string{"brainctl", "categories"})
	require.NoError(t, err)
}

func TestDBCommands_RequireDatabaseURL(t *testing.T) {
	t.Setenv("BRAIN_DATABASE_URL", "")
	app := newApp()

	err := app.Run([]string{"brainctl", "db", "list-transactions"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}
