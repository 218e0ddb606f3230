package gemini

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageFormat(t *testing.T) {
	require.Equal(t, "png", imageFormat("data:image/png;base64,xxx"))
	require.Equal(t, "webp", imageFormat("data:image/webp;base64,xxx"))
	require.Equal(t, "jpeg", imageFormat("data:image/jpeg;base64,xxx"))
	require.Equal(t, "jpeg", imageFormat("bare base64 without a marker"))
}
