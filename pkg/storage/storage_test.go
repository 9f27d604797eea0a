package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSaveReadSweep(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	disk, err := NewDisk(dir)
	require.NoError(t, err)

	require.NoError(t, disk.Save("old.csv", []byte("a,b\n")))
	require.NoError(t, disk.Save("new.csv", []byte("c,d\n")))

	data, err := disk.Read("old.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), past, past))

	removed, err := disk.Sweep(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.csv"}, removed)

	_, err = disk.Read("old.csv")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = disk.Read("new.csv")
	assert.NoError(t, err)
}

func TestDiskRejectsPathsOutsideDir(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.csv", "nested/file.csv", ".hidden"} {
		assert.ErrorIs(t, disk.Save(name, nil), ErrInvalidName, name)
	}
}

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, expires, err := signer.Sign("job-1", "overallocation.csv")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 2*time.Second)

	jobID, name, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "overallocation.csv", name)
}

func TestSignerRejectsTamperingAndExpiry(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, _, err := signer.Sign("job-1", "overallocation.csv")
	require.NoError(t, err)

	_, _, err = NewSigner("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = signer.Verify(strings.Replace(token, "job-1", "job-2", 1))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = signer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, _, err = NewSigner("", time.Hour).Sign("job-1", "x.csv")
	assert.Error(t, err)
}
