package rips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosedImage(t *testing.T) {
	for name, img := range map[string]*Image{"zero": {}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0, img.Width())
			assert.Equal(t, 0, img.Height())
			assert.Equal(t, 0, img.Bands())
			assert.Equal(t, FormatNotSet, img.Format())

			_, err := img.Resize(2)
			assert.ErrorIs(t, err, ErrClosed)
			assert.Equal(t, KindOpaque, KindOf(err))

			_, err = img.ResizeTo(10, 10)
			assert.ErrorIs(t, err, ErrClosed)

			_, err = img.Crop(0, 0, 1, 1)
			assert.ErrorIs(t, err, ErrClosed)

			_, err = img.Rotate(AngleD90)
			assert.ErrorIs(t, err, ErrClosed)

			_, err = img.ToBuffer(".png")
			assert.ErrorIs(t, err, ErrClosed)

			_, err = img.ToBytes()
			assert.ErrorIs(t, err, ErrClosed)

			assert.ErrorIs(t, img.WriteToFile("out.png"), ErrClosed)
			require.NoError(t, img.Close())
			require.NoError(t, img.Close())
		})
	}
}

func TestNulArgumentsFailBeforeNativeCalls(t *testing.T) {
	img := &Image{}

	err := img.WriteToFile("out\x00.png")
	assert.Equal(t, KindNul, KindOf(err))

	_, err = img.ToBuffer(".png\x00")
	assert.Equal(t, KindNul, KindOf(err))

	var nerr *NulError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, 4, nerr.Position)
}
