package main

import (
	"bytes"
	"context"
	"github.com/janpfeifer/lossopts/internal/ui/cli"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strconv"
	"strings"
	"testing"
)

func TestParseList(t *testing.T) {
	dims, err := parseList(" 2, 3 ", strconv.Atoi)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, dims)

	_, err = parseList("2,x", strconv.Atoi)
	require.ErrorContains(t, err, "#1")
}

func TestListKinds(t *testing.T) {
	var buf bytes.Buffer
	listKinds(cli.New(&buf, false))
	out := buf.String()
	assert.Contains(t, out, "kl_div")
	assert.Contains(t, out, "none|batchmean|sum|mean")
	assert.Contains(t, out, "TripletMargin(margin=1, p=2, eps=1e-06, swap=false, reduction=mean)")
}

func TestRunChecks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runChecks(context.Background(), cli.New(&buf, false)))
	assert.NotContains(t, buf.String(), "[FAIL]")
	assert.Equal(t, len(allChecks()), strings.Count(buf.String(), "[ok]"))
}

// setFlag sets a flag value for the duration of the test.
func setFlag[T any](t *testing.T, flagPtr *T, value T) {
	previous := *flagPtr
	*flagPtr = value
	t.Cleanup(func() { *flagPtr = previous })
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	ui := cli.New(&buf, false)
	require.ErrorIs(t, run(context.Background(), ui), errNoCommand)

	setFlag(t, flagConfig, "not_a_loss")
	require.ErrorIs(t, run(context.Background(), ui), reduction.ErrInvalidConfiguration)

	setFlag(t, flagConfig, "kl_div,reduction=batchmean")
	setFlag(t, flagLosses, "1,2,3,4")
	setFlag(t, flagDims, "2,2")
	require.NoError(t, run(context.Background(), ui))
	assert.Contains(t, buf.String(), "KLDiv(reduction=batchmean)")
	assert.Contains(t, buf.String(), "values=[5]")

	setFlag(t, flagDims, "3")
	require.ErrorIs(t, run(context.Background(), ui), reduction.ErrShapeMismatch)
}
