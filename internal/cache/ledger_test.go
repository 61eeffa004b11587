package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_RecordAndGet(t *testing.T) {
	ledger, err := OpenLedger(t.TempDir())
	require.NoError(t, err)
	defer ledger.Close()

	entry := Entry{
		Signature:    "sig1",
		ModuleName:   "Foo",
		TargetTriple: "arm64-apple-ios17.0",
		SourceCount:  3,
		Duration:     2 * time.Second,
		Success:      true,
	}

	err = ledger.Record(entry)
	require.NoError(t, err)

	got, err := ledger.Get("sig1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Foo", got.ModuleName)
	assert.Equal(t, 3, got.SourceCount)
	assert.True(t, got.Success)
	assert.False(t, got.Timestamp.IsZero(), "Record should fill in a missing timestamp")
}

func TestLedger_GetMiss(t *testing.T) {
	ledger, err := OpenLedger(t.TempDir())
	require.NoError(t, err)
	defer ledger.Close()

	got, err := ledger.Get("unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLedger_RecordRequiresSignature(t *testing.T) {
	ledger, err := OpenLedger(t.TempDir())
	require.NoError(t, err)
	defer ledger.Close()

	err = ledger.Record(Entry{ModuleName: "Foo"})
	assert.Error(t, err)
}

func TestLedger_StatsAndClear(t *testing.T) {
	ledger, err := OpenLedger(t.TempDir())
	require.NoError(t, err)
	defer ledger.Close()

	require.NoError(t, ledger.Record(Entry{Signature: "sig1", Success: true}))
	require.NoError(t, ledger.Record(Entry{Signature: "sig2", Success: false}))
	require.NoError(t, ledger.Record(Entry{Signature: "sig3", Success: true}))

	count, succeeded, err := ledger.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 2, succeeded)

	// Re-recording the same signature overwrites, not duplicates.
	require.NoError(t, ledger.Record(Entry{Signature: "sig2", Success: true}))

	count, succeeded, err = ledger.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, succeeded)

	err = ledger.Clear()
	require.NoError(t, err)

	count, _, err = ledger.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
