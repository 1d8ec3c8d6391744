package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(filename, data, 0o644))
	return filename
}

func TestLoadBinary(t *testing.T) {
	filename := writeTestFile(t, "test.bin", []byte{0x01, 0x02, 0x03})

	img, err := Load(filename, 0x8000)
	assert.NoError(t, err)

	assert.Equal(t, 1, len(img.Segments))
	assert.Equal(t, uint16(0x8000), img.Segments[0].Address)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, img.Segments[0].Data)
}

func TestLoadBinaryEmpty(t *testing.T) {
	filename := writeTestFile(t, "empty.bin", nil)

	_, err := Load(filename, 0)
	assert.True(t, err != nil)
}

func TestLoadBinaryExceedsAddressSpace(t *testing.T) {
	filename := writeTestFile(t, "test.bin", make([]byte, 0x200))

	_, err := Load(filename, 0xff00)
	assert.True(t, err != nil)
}

func TestLoadHex(t *testing.T) {
	content := ":020000000102FB\n" +
		":0100100003EC\n" +
		":00000001FF\n"
	filename := writeTestFile(t, "test.hex", []byte(content))

	img, err := Load(filename, 0)
	assert.NoError(t, err)

	assert.Equal(t, 2, len(img.Segments))
	assert.Equal(t, uint16(0x0000), img.Segments[0].Address)
	assert.Equal(t, []byte{0x01, 0x02}, img.Segments[0].Data)
	assert.Equal(t, uint16(0x0010), img.Segments[1].Address)
	assert.Equal(t, []byte{0x03}, img.Segments[1].Data)
}

func TestLoadHexInvalid(t *testing.T) {
	filename := writeTestFile(t, "test.hex", []byte(":02000000010203\n"))

	_, err := Load(filename, 0)
	assert.True(t, err != nil)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.bin"), 0)
	assert.True(t, err != nil)
}
