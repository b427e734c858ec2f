package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nonigma/internal/batch"
	"nonigma/internal/cipher"
	"nonigma/internal/key"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wheelOrder = "lg,dg,bl,pu,re,or,pi,pe,gr"
	positions  = "11,14,12,11,17,9,9,13,0"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEncode(t *testing.T) {
	out, err := execute(t, "encode", "-w", wheelOrder, "-p", positions, "-m", "HelloWorld!")
	require.NoError(t, err)
	assert.Equal(t, "BaMpk.-B1Ra\n", out)
}

func TestDecode(t *testing.T) {
	out, err := execute(t, "decode", "-w", wheelOrder, "-p", positions, "-m", "BaMpk.-B1Ra")
	require.NoError(t, err)
	assert.Equal(t, "HelloWorld!\n", out)
}

func TestEncodeStrip(t *testing.T) {
	_, err := execute(t, "encode", "-w", wheelOrder, "-p", positions, "-m", "Hello World")
	require.ErrorIs(t, err, cipher.ErrUnsupportedCharacter)

	out, err := execute(t, "encode", "-w", wheelOrder, "-p", positions, "-m", "Hello World", "-s")
	require.NoError(t, err)
	assert.Equal(t, "BaMpk.-B1R\n", out)
}

func TestEncodeFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("HelloWorld!"), 0644))

	stdout, err := execute(t, "encode", "-w", wheelOrder, "-p", positions, "-i", in, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "BaMpk.-B1Ra", string(data))
}

func TestEncodeKeyFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "key.yaml")
	require.NoError(t, key.Save(file, cipher.ReferenceKey))

	out, err := execute(t, "encode", "--key-file", file, "-m", "HelloWorld!")
	require.NoError(t, err)
	assert.Equal(t, "BaMpk.-B1Ra\n", out)
}

func TestEncodeInvalidKey(t *testing.T) {
	_, err := execute(t, "encode", "-w", "lg,dg,bl,pu,re,or,pi,pe,xx", "-p", positions, "-m", "a")
	require.ErrorIs(t, err, cipher.ErrInvalidKey)

	_, err = execute(t, "encode", "-w", wheelOrder, "-p", "1,2,3", "-m", "a")
	require.Error(t, err)

	_, err = execute(t, "encode", "-w", wheelOrder, "-m", "a")
	require.Error(t, err)

	_, err = execute(t, "encode", "-m", "a")
	require.Error(t, err)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("HelloWorld!"), 0644))
	}

	_, err := execute(t, "batch", "-w", wheelOrder, "-p", positions, filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"))
	require.NoError(t, err)

	for _, name := range []string{"a.txt", "b.txt"} {
		data, err := os.ReadFile(filepath.Join(dir, name+".nonigma"))
		require.NoError(t, err)
		assert.Equal(t, "BaMpk.-B1Ra", string(data))
	}
}

func TestKeys(t *testing.T) {
	ring := filepath.Join(t.TempDir(), "ring", "keyring.db")

	_, err := execute(t, "--keyring", ring, "keys", "save", "ref", "-w", wheelOrder, "-p", positions)
	require.NoError(t, err)

	out, err := execute(t, "--keyring", ring, "keys", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ref")
	assert.Contains(t, out, wheelOrder)

	out, err = execute(t, "--keyring", ring, "encode", "--key", "ref", "-m", "HelloWorld!")
	require.NoError(t, err)
	assert.Equal(t, "BaMpk.-B1Ra\n", out)

	out, err = execute(t, "--keyring", ring, "keys", "show", "ref")
	require.NoError(t, err)
	assert.Equal(t, "wheels: ["+wheelOrder+"]\npositions: ["+positions+"]\n", out)

	_, err = execute(t, "--keyring", ring, "keys", "delete", "ref")
	require.NoError(t, err)

	_, err = execute(t, "--keyring", ring, "keys", "show", "ref")
	require.Error(t, err)
}

func TestWheels(t *testing.T) {
	out, err := execute(t, "wheels")
	require.NoError(t, err)
	for _, name := range []string{"lg", "dg", "bl", "pu", "re", "or", "pi", "pe", "gr"} {
		assert.Contains(t, out, name)
	}

	lines := map[string][]string{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		lines[fields[0]] = fields
	}
	re := lines["re"]
	assert.Equal(t, []string{"24", "4"}, re[len(re)-2:])
	lg := lines["lg"]
	assert.Equal(t, []string{"18", "0,1,2,3,5,6,7,8"}, lg[len(lg)-2:])
}

func TestSelfTest(t *testing.T) {
	out, err := execute(t, "selftest")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 8080
  antidosBuckets: 16
  antidosPeriod: 100ms
  maxConcurrent: 2
  shutdownTimeout: 5s
keyring:
  file: /tmp/keyring.db
`), 0644))

	c, err := LoadConfig(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 16, c.Server.AntidosBuckets)
	assert.Equal(t, 100*time.Millisecond, c.Server.AntidosPeriod)
	assert.Equal(t, 5*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, "/tmp/keyring.db", c.Keyring.File)

	require.NoError(t, os.WriteFile(file, []byte("server:\n  bogus: 1\n"), 0644))
	_, err = LoadConfig(context.Background(), file)
	require.Error(t, err)
}

func TestBatchDuplicateOutput(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0755))
	var inputs []string
	for _, sub := range []string{"a", "b"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, sub), 0755))
		in := filepath.Join(dir, sub, "x.txt")
		require.NoError(t, os.WriteFile(in, []byte("HelloWorld!"), 0644))
		inputs = append(inputs, in)
	}

	args := append([]string{"batch", "-w", wheelOrder, "-p", positions, "--out-dir", outDir}, inputs...)
	_, err := execute(t, args...)
	require.ErrorIs(t, err, batch.ErrDuplicateOutput)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestKeyringOpenFailure(t *testing.T) {
	// A directory cannot be opened as a keyring file.
	ring := t.TempDir()

	_, err := execute(t, "--keyring", ring, "keys", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("keyring %q", ring))
	assert.Contains(t, err.Error(), "recovered panic")
}

func TestCompleteKeyNames(t *testing.T) {
	ring := filepath.Join(t.TempDir(), "keyring.db")
	for _, name := range []string{"ref", "red", "other"} {
		_, err := execute(t, "--keyring", ring, "keys", "save", name, "-w", wheelOrder, "-p", positions)
		require.NoError(t, err)
	}

	out := &bytes.Buffer{}
	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"__complete", "keys", "show", "--keyring", ring, "re"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"red", "ref", ":4"}, lines)
}
