package mongodb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte(`{"message":"server down"},`), 500)
	require.Greater(t, len(data), compressionThreshold)

	packed, err := compress(data)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data))

	unpacked, err := decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, data, unpacked)
}

func TestDecompress_Garbage(t *testing.T) {
	_, err := decompress([]byte("plain"))
	assert.Error(t, err)
}
