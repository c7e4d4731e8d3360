package seqio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func streamAll(t *testing.T, path string) []string {
	t.Helper()
	out := make(chan string, 64)
	errCh := make(chan error, 1)
	go func() { errCh <- Stream(path, out) }()

	var got []string
	for s := range out {
		got = append(got, s)
	}
	require.NoError(t, <-errCh)
	return got
}

func TestStreamReadsFastaRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.fasta")
	content := ">seq1\nACGT\nACGT\n>seq2\nTTTT\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got := streamAll(t, path)
	require.Equal(t, []string{"ACGTACGT", "TTTT"}, got)
}

func TestStreamReadsFastqRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.fastq")
	content := "@read1\nACGTACGT\n+\nIIIIIIII\n@read2\nTTTTGGGG\n+\nIIIIIIII\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got := streamAll(t, path)
	require.Equal(t, []string{"ACGTACGT", "TTTTGGGG"}, got)
}

func TestStreamUppercasesAndDoesNotRewriteAmbiguousBases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.fasta")
	content := ">seq1\nacgtn\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got := streamAll(t, path)
	require.Equal(t, []string{"ACGTN"}, got)
}

func TestStreamMissingFileErrors(t *testing.T) {
	out := make(chan string, 4)
	err := Stream(filepath.Join(t.TempDir(), "missing.fasta"), out)
	require.Error(t, err)
}
