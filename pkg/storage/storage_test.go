package storage

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("exp-1", "roster/2024-01-01.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	exportID, name, parsedExpiry, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "exp-1", exportID)
	require.Equal(t, "roster/2024-01-01.csv", name)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, _, err := signer.Sign("exp-1", "roster/2024-01-01.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "exp-2"
	_, _, _, err = signer.Verify(strings.Join(parts, "."))
	require.Error(t, err)

	_, _, _, err = NewDownloadSigner("other", time.Hour).Verify(token)
	require.Error(t, err)
}

func TestDownloadSignerExpired(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Millisecond*10)
	token, _, err := signer.Sign("exp-1", "roster/2024-01-01.csv")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Verify(token)
	require.ErrorContains(t, err, "expired")
}

func TestArchiveSaveAndOpen(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	name, err := archive.Save("roster/today.csv", []byte("a,b\n"))
	require.NoError(t, err)
	require.Equal(t, "roster/today.csv", name)

	file, err := archive.Open(name)
	require.NoError(t, err)
	defer file.Close()

	data, err := os.ReadFile(file.Name())
	require.NoError(t, err)
	require.Equal(t, "a,b\n", string(data))
}

func TestArchiveRejectsEscapingNames(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Save("../outside.csv", []byte("x"))
	require.Error(t, err)

	_, err = archive.Open("/etc/passwd")
	require.Error(t, err)
}

func TestArchiveSweep(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir)
	require.NoError(t, err)

	_, err = archive.Save("old.csv", []byte("x"))
	require.NoError(t, err)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(dir+"/old.csv", old, old))

	_, err = archive.Save("fresh.csv", []byte("y"))
	require.NoError(t, err)

	removed, err := archive.Sweep(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old.csv"}, removed)

	_, err = os.Stat(dir + "/fresh.csv")
	require.NoError(t, err)
}
