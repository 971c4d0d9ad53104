package config

import (
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gridslicer/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	t.Parallel()

	job, err := FromEnv(lookupFrom(map[string]string{
		EnvInputDir:    "/in",
		EnvOutputDir:   "/out",
		EnvTileColumns: " 100 ",
	}))

	require.NoError(t, err)
	assert.Equal(t, Job{InputDir: "/in", OutputDir: "/out", TileColumns: 100}, job)
}

func TestFromEnv_InvalidNumber(t *testing.T) {
	t.Parallel()

	_, err := FromEnv(lookupFrom(map[string]string{EnvTileRows: "ten"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTileRows)
}

func TestMerge_Precedence(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	env := Job{InputDir: "/env/in", OutputDir: "/env/out", TileColumns: 10}
	file := Job{OutputDir: "/file/out", TileRows: 20, Output: Output{Kind: OutputS3, S3: S3Output{Bucket: "b"}}}
	flags := Job{TileColumns: 30}

	// --- Act ---
	job := Job{}
	job.Merge(env)
	job.Merge(file)
	job.Merge(flags)

	// --- Assert ---
	assert.Equal(t, Job{
		InputDir:    "/env/in",
		OutputDir:   "/file/out",
		TileColumns: 30,
		TileRows:    20,
		Output:      Output{Kind: OutputS3, S3: S3Output{Bucket: "b"}},
	}, job)
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	job := Job{InputDir: "/in", Extension: ".ASC"}
	job.ApplyDefaults()

	assert.Equal(t, "ASC", job.Extension)
	assert.Equal(t, OutputLocal, job.Output.Kind)
	assert.Equal(t, filepath.Join("/in", "BROKEN FILES.txt"), job.LedgerPath)

	empty := Job{}
	empty.ApplyDefaults()
	assert.Equal(t, DefaultExtension, empty.Extension)
	assert.Empty(t, empty.LedgerPath)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Job{InputDir: "/in", OutputDir: "/out", TileColumns: 2, TileRows: 2, Output: Output{Kind: OutputLocal}}

	testCases := []struct {
		name    string
		mutate  func(j *Job)
		wantErr bool
	}{
		{name: "valid local", mutate: func(j *Job) {}},
		{name: "valid s3", mutate: func(j *Job) { j.OutputDir = ""; j.Output = Output{Kind: OutputS3, S3: S3Output{Bucket: "b"}} }},
		{name: "missing input", mutate: func(j *Job) { j.InputDir = "" }, wantErr: true},
		{name: "zero tile columns", mutate: func(j *Job) { j.TileColumns = 0 }, wantErr: true},
		{name: "negative tile rows", mutate: func(j *Job) { j.TileRows = -3 }, wantErr: true},
		{name: "local without output dir", mutate: func(j *Job) { j.OutputDir = "" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(j *Job) { j.Output.Kind = OutputS3 }, wantErr: true},
		{name: "unknown output kind", mutate: func(j *Job) { j.Output.Kind = "ftp" }, wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			job := valid
			tc.mutate(&job)
			err := job.Validate()

			if tc.wantErr {
				assert.True(t, grid.IsInvalidParameter(err), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
