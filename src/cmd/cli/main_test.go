package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"snaptranslate/src/capture"
)

func TestAppCommandsRegistered(t *testing.T) {
	app := newApp()

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"translate", "capture", "providers"}, names)
}

func TestTranslateRequiresInput(t *testing.T) {
	// With no argument and an empty stdin the command must fail rather
	// than hang or translate nothing.
	app := newApp()
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}

	err := app.Run([]string{"snaptranslate", "translate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to translate")
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("100, 200,300,50")
	require.NoError(t, err)
	assert.Equal(t, capture.Region{X: 100, Y: 200, Width: 300, Height: 50}, r)

	for _, spec := range []string{"", "1,2,3", "1,2,3,4,5", "a,b,c,d", "0,0,0,100", "0,0,100,-1"} {
		_, err := parseRegion(spec)
		assert.Error(t, err, "spec %q", spec)
	}
}
