package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator_Options(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, 256, g.size)
	assert.Equal(t, Medium, g.recoveryLevel)

	g = NewGenerator(WithSize(128), WithRecoveryLevel(High))
	assert.Equal(t, 128, g.size)
	assert.Equal(t, High, g.recoveryLevel)

	assert.Equal(t, 256, NewGenerator(WithSize(0)).size)
}

func TestGenerator_GeneratePNG(t *testing.T) {
	data, err := NewGenerator().GeneratePNG(BookingContent("BKG-1-1"))
	require.NoError(t, err)

	// PNG 文件头
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestGenerator_EmptyContent(t *testing.T) {
	_, err := NewGenerator().GeneratePNG("")
	assert.Error(t, err)
}

func TestGenerator_RecoveryLevels(t *testing.T) {
	for _, level := range []RecoveryLevel{Low, Medium, High, Highest, RecoveryLevel(99)} {
		_, err := NewGenerator(WithRecoveryLevel(level)).GeneratePNG("BKG-1-1")
		assert.NoError(t, err)
	}
}

func TestBookingContent_RoundTrip(t *testing.T) {
	content := BookingContent("BKG-1734220800000-7")
	assert.Equal(t, "FOODSTAY:BOOKING:BKG-1734220800000-7", content)

	no, ok := ParseBookingContent(content)
	assert.True(t, ok)
	assert.Equal(t, "BKG-1734220800000-7", no)

	_, ok = ParseBookingContent("FOODSTAY:BOOKING:")
	assert.False(t, ok)
	_, ok = ParseBookingContent("https://example.com")
	assert.False(t, ok)
}
