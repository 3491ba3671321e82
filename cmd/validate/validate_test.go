/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package validate

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/reftoken/cmd/internal/cli"
	"bennypowers.dev/reftoken/internal/logger"
	"bennypowers.dev/reftoken/testutil"
)

func projectSettings(t *testing.T) *cli.Settings {
	t.Helper()
	mfs := testutil.NewProjectFS(t, "/project", "fixtures/documents/app", "fixtures/config/simple", "fixtures/documents/cycle")

	settings, err := cli.LoadFS(nil, mfs, "/project")
	require.NoError(t, err)
	return settings
}

func TestValidateFiles(t *testing.T) {
	settings := projectSettings(t)
	p, err := settings.Parser()
	require.NoError(t, err)

	reports := validateFiles(t.Context(), settings, p, []string{
		"/project/app.yaml",
		"/project/services/queue.json",
		"/project/cycle.yaml",
		"/project/missing.yaml",
	})
	require.Len(t, reports, 4)

	app := reports[0]
	assert.Equal(t, 4, app.References)
	assert.Len(t, app.Problems, 2, "strict config turns unresolved references into problems")
	assert.Empty(t, app.Warnings)

	queue := reports[1]
	assert.Empty(t, queue.Problems)
	require.Len(t, queue.Warnings, 1)
	assert.Contains(t, queue.Warnings[0], "missing.key")

	cycle := reports[2]
	require.NotEmpty(t, cycle.Problems)
	assert.Contains(t, cycle.Problems[0], "a -> b -> c -> a")

	assert.NotEmpty(t, reports[3].Problems)
}

func TestValidateFiles_Lenient(t *testing.T) {
	settings := projectSettings(t)
	settings.Config.Strict = false
	p, err := settings.Parser()
	require.NoError(t, err)

	reports := validateFiles(t.Context(), settings, p, []string{"app.yaml"})
	require.Len(t, reports, 1)
	assert.Empty(t, reports[0].Problems)
	assert.Len(t, reports[0].Warnings, 2)
}

func TestPrintReports(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	var out bytes.Buffer
	err := printReports(&out, []report{{Source: "ok.yaml", References: 3}}, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Validating ok.yaml...")
	assert.Contains(t, out.String(), "3 references")
	assert.Contains(t, out.String(), "All files valid.")

	out.Reset()
	err = printReports(&out, []report{{Source: "bad.yaml", Problems: []string{"boom"}, Warnings: []string{"hmm"}}}, true)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "error: bad.yaml: boom")
	assert.Contains(t, logs.String(), "warning: bad.yaml: hmm")
}
