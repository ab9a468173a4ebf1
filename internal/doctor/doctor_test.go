package doctor

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/csel/pkg/compiler"
)

func TestReport_AddCheckCounts(t *testing.T) {
	var r Report
	r.AddCheck(CheckResult{Status: StatusPass})
	r.AddCheck(CheckResult{Status: StatusWarn})
	r.AddCheck(CheckResult{Status: StatusFail})
	r.AddCheck(CheckResult{Status: StatusPass})

	assert.Equal(t, 2, r.Passed)
	assert.Equal(t, 1, r.Warnings)
	assert.Equal(t, 1, r.Errors)
	assert.True(t, r.HasErrors())
}

func TestReport_Print(t *testing.T) {
	var r Report
	r.AddCheck(CheckResult{Category: "Configuration", Status: StatusPass, Message: "ok", Details: "hidden"})
	r.AddCheck(CheckResult{Category: "Search Table", Status: StatusFail, Message: "missing", FixHint: "run migrate"})

	var buf bytes.Buffer
	r.Print(&buf, false)
	assert.Equal(t,
		"\nConfiguration\n  ✓ ok\n\nSearch Table\n  ✗ missing\n      Fix: run migrate\n\nSummary: 1 passed, 0 warnings, 1 errors\n",
		buf.String())

	buf.Reset()
	r.Print(&buf, true)
	assert.Contains(t, buf.String(), "      hidden\n")
}

func TestStatus_Strings(t *testing.T) {
	assert.Equal(t, "pass", StatusPass.String())
	assert.Equal(t, "warn", StatusWarn.String())
	assert.Equal(t, "fail", StatusFail.String())
	assert.Equal(t, "unknown", Status(9).String())
	assert.Equal(t, "?", Status(9).Symbol())
}

func TestCheckConfiguration(t *testing.T) {
	opts := compiler.DefaultOptions().WithAlias("path", "paths").WithAlias("format", "tsv_format")
	report := New(nil, "", opts).CheckConfiguration()

	require.Len(t, report.Checks, 3)
	assert.False(t, report.HasErrors())
	assert.Equal(t, 0, report.Warnings)
	assert.Equal(t, "Parameters render as :param_0", report.Checks[0].Message)
	assert.Equal(t, "format -> tsv_format\npath -> paths", report.Checks[2].Details)
}

func TestCheckConfiguration_Problems(t *testing.T) {
	report := New(nil, "", compiler.Options{}).CheckConfiguration()

	assert.True(t, report.HasErrors())
	assert.Equal(t, 1, report.Warnings)
	assert.Equal(t, "path_alias", report.Checks[1].Name)
	assert.Equal(t, StatusWarn, report.Checks[1].Status)
}

func TestColumnProblems(t *testing.T) {
	aliases := map[string]string{
		"format":          "tsv_format",
		"name":            "tsv_name",
		"path":            "paths",
		"repository_name": "repository_name",
		"version":         "version",
	}
	columns := map[string]string{
		"tsv_format":      "tsvector",
		"paths":           "tsvector",
		"repository_name": "varchar",
		"version":         "text",
	}

	assert.Equal(t, []string{
		"name: column tsv_name does not exist",
		"path: column paths is tsvector, want text",
		"version: column version is text, want tsvector",
	}, ColumnProblems(aliases, columns))

	assert.Empty(t, ColumnProblems(map[string]string{"path": "paths"}, map[string]string{"paths": "text"}))
}

func TestDescribePgError(t *testing.T) {
	err := &pq.Error{Code: "42P01", Message: `relation "x" does not exist`}
	assert.Equal(t, `relation "x" does not exist (SQLSTATE 42P01 undefined_table)`, describePgError(err))
	assert.Equal(t, "plain", describePgError(errors.New("plain")))
}
