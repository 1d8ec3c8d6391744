package objfile

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestRecordBuffer(t *testing.T) {
	record := recordBuffer{addr: 0x0200, limit: 2}

	assert.True(t, record.empty())
	assert.False(t, record.full())
	assert.Equal(t, uint16(0x0200), record.end())

	record.append(0x01)
	assert.False(t, record.empty())
	assert.False(t, record.full())
	assert.Equal(t, uint16(0x0201), record.end())

	record.append(0x02)
	assert.True(t, record.full())

	addr, data := record.take()
	assert.Equal(t, uint16(0x0200), addr)
	assert.Equal(t, []byte{0x01, 0x02}, data)
	assert.True(t, record.empty())
}

func TestWriteRecord(t *testing.T) {
	tests := []struct {
		name    string
		recType byte
		addr    uint16
		data    []byte
		want    string
	}{
		{
			name:    "data record",
			recType: recordData,
			addr:    0x0100,
			data:    []byte{0x21, 0x46, 0x01},
			want:    ":0301000021460194\n",
		},
		{
			name:    "end of file record",
			recType: recordEOF,
			addr:    0x0000,
			want:    ":00000001FF\n",
		},
		{
			name:    "end of file record with start address",
			recType: recordEOF,
			addr:    0x0150,
			want:    ":00015001AE\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			assert.NoError(t, writeRecord(buf, tt.recType, tt.addr, tt.data))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name    string
		recType byte
		addr    uint16
		data    []byte
		want    byte
	}{
		{
			name:    "empty eof record",
			recType: recordEOF,
			want:    0xff,
		},
		{
			name:    "data record",
			recType: recordData,
			addr:    0x0010,
			data:    []byte{0x01, 0x02},
			want:    0xeb,
		},
		{
			name:    "sum wraps mod 256",
			recType: recordData,
			addr:    0xffff,
			data:    []byte{0xff, 0xff},
			want:    0x02,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := checksum(tt.recType, tt.addr, tt.data)
			assert.Equal(t, tt.want, sum)

			// the field sum including the checksum is zero mod 256
			total := byte(len(tt.data)) + byte(tt.addr>>8) + byte(tt.addr) + tt.recType + sum
			for _, b := range tt.data {
				total += b
			}
			assert.Equal(t, byte(0), total)
		})
	}
}
