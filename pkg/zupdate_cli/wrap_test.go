// pkg/zupdate_cli/wrap_test.go

package zupdate_cli

import (
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_err"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRecoversPanics(t *testing.T) {
	runE := Wrap(func(rc *zupdate_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		panic("nil snapshot")
	})

	var err error
	require.NotPanics(t, func() {
		err = runE(&cobra.Command{Use: "precheck"}, nil)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.False(t, zupdate_err.IsExpectedUserError(err))
}

func TestWrapPreservesExpectedErrors(t *testing.T) {
	want := zupdate_err.NewExpectedError(errors.New("pool is DEGRADED"))
	runE := Wrap(func(rc *zupdate_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return want
	})

	err := runE(&cobra.Command{Use: "precheck"}, nil)
	require.Error(t, err)
	assert.True(t, zupdate_err.IsExpectedUserError(err))
	assert.Equal(t, "pool is DEGRADED", err.Error())
}

func TestWrapPassesNilThrough(t *testing.T) {
	runE := Wrap(func(rc *zupdate_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return nil
	})
	assert.NoError(t, runE(&cobra.Command{Use: "postcheck"}, nil))
}
