package maincmd_test

import (
	"bytes"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/loxvm/internal/filetest"
	"github.com/mna/loxvm/internal/maincmd"
	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

var testUpdateMaincmdTests = flag.Bool("test.update-maincmd-tests", false, "If set, replace expected maincmd test results with actual results.")

func TestRunFile(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lox") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			c := &maincmd.Cmd{BuildVersion: "test", BuildDate: "test"}
			c.Main([]string{"loxvm", filepath.Join(srcDir, fi.Name())}, stdio)

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateMaincmdTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateMaincmdTests)
		})
	}
}

func TestTooManyArgsIsUsageError(t *testing.T) {
	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}
	c := &maincmd.Cmd{}
	code := c.Main([]string{"loxvm", "a.lox", "b.lox"}, stdio)
	require.Equal(t, maincmd.ExitUsage, code)
}

func TestVersionFlag(t *testing.T) {
	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}
	c := &maincmd.Cmd{BuildVersion: "1.0.0", BuildDate: "2026-01-01"}
	code := c.Main([]string{"loxvm", "--version"}, stdio)
	require.Equal(t, maincmd.ExitSuccess, code)
	require.Contains(t, buf.String(), "1.0.0")
}

func TestRunMissingFileIsIOError(t *testing.T) {
	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}
	c := &maincmd.Cmd{}
	code := c.Main([]string{"loxvm", filepath.Join("testdata", "does-not-exist.lox")}, stdio)
	require.Equal(t, maincmd.ExitIOError, code)
}
