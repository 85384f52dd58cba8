package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreform/jsvm/core/vm"
)

func writeFixture(t *testing.T, json string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(json), 0o644))
	return path
}

func TestLoadFixtureConvertsConstantsAndCode(t *testing.T) {
	path := writeFixture(t, `{
		"name": "add",
		"code": "AwAAgQAB",
		"constants": [{"type": "number", "num": 1}, {"type": "number", "num": 2}]
	}`)

	code, err := loadFixture(path)
	require.NoError(t, err)
	require.Equal(t, "add", code.Name)
	require.Len(t, code.Constants, 2)
	require.Equal(t, 1.0, code.Constants[0].Float64())
	require.Equal(t, 2.0, code.Constants[1].Float64())
	require.Equal(t, []byte{0x03, 0x00, 0x00, 0x81, 0x00, 0x01}, code.Code)
}

func TestLoadFixtureRejectsUnknownHandlerKind(t *testing.T) {
	path := writeFixture(t, `{
		"name": "bad",
		"code": "",
		"handlers": [{"startPC": 0, "endPC": 1, "handlerPC": 1, "kind": "bogus"}]
	}`)

	_, err := loadFixture(path)
	require.Error(t, err)
}

func TestLoadFixtureRejectsUnknownFlag(t *testing.T) {
	path := writeFixture(t, `{
		"name": "bad",
		"code": "",
		"flags": ["not-a-real-flag"]
	}`)

	_, err := loadFixture(path)
	require.Error(t, err)
}

func TestLoadFixtureDecodesFlagsAndHandlers(t *testing.T) {
	path := writeFixture(t, `{
		"name": "strictGenerator",
		"code": "",
		"flags": ["strict", "generator"],
		"handlers": [{"startPC": 0, "endPC": 3, "handlerPC": 3, "kind": "catch", "stackDepth": 0}]
	}`)

	code, err := loadFixture(path)
	require.NoError(t, err)
	require.True(t, code.Flags.Strict())
	require.True(t, code.Flags.Generator())
	require.False(t, code.Flags.Async())
	require.Len(t, code.Handlers, 1)
	require.Equal(t, vm.HandlerCatch, code.Handlers[0].Kind)
}

func TestLoadFixtureRecursesIntoSubBlocks(t *testing.T) {
	path := writeFixture(t, `{
		"name": "outer",
		"code": "",
		"subBlocks": [
			{"name": "inner", "code": "", "constants": [{"type": "string", "str": "x"}]}
		]
	}`)

	code, err := loadFixture(path)
	require.NoError(t, err)
	require.Len(t, code.SubBlocks, 1)
	require.Equal(t, "inner", code.SubBlocks[0].Name)
	require.Equal(t, "x", code.SubBlocks[0].Constants[0].Str().Go())
}

func TestLoadFixtureMissingFileErrors(t *testing.T) {
	_, err := loadFixture(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
