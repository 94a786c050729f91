// pkg/zupdate_err/errors_test.go

package zupdate_err

import (
	"errors"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name          string
		output        string
		maxCandidates int
		want          string
	}{
		{
			name:          "empty output",
			output:        "",
			maxCandidates: 2,
			want:          "No output provided.",
		},
		{
			name:          "picks error lines",
			output:        "loading modules\ncannot open 'rpool/data': dataset does not exist\ndone",
			maxCandidates: 2,
			want:          "cannot open 'rpool/data': dataset does not exist",
		},
		{
			name:          "caps candidates",
			output:        "error: one\nerror: two\nerror: three",
			maxCandidates: 2,
			want:          "error: one - error: two",
		},
		{
			name:          "falls back to first non-empty line",
			output:        "\n\nall pools are healthy\n",
			maxCandidates: 2,
			want:          "all pools are healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummary(tt.output, tt.maxCandidates))
		})
	}
}

func TestExpectedErrors(t *testing.T) {
	assert.Nil(t, NewExpectedError(nil))

	base := errors.New("pool is DEGRADED")
	wrapped := NewExpectedError(base)
	assert.True(t, IsExpectedUserError(wrapped))
	assert.True(t, IsExpectedUserError(cerr.Wrap(wrapped, "precheck")))
	assert.False(t, IsExpectedUserError(base))
	assert.Equal(t, "pool is DEGRADED", wrapped.Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, 0, GetExitCode(nil))
	assert.Equal(t, 1, GetExitCode(errors.New("boom")))
	assert.Equal(t, 1, GetExitCode(NewDependencyError("zpool", "install zfsutils-linux")))
}
