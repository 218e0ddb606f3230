package utils

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dermasnap/pkg/imaging"
)

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()

	id, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	require.Len(t, id, 26)
	require.NoError(t, u.ValidateULID(id))
}

func TestValidateULID_Malformed(t *testing.T) {
	u := New()

	require.Error(t, u.ValidateULID("not-a-ulid"))
	require.Error(t, u.ValidateULID(""))
	require.Error(t, u.ValidateULID("0000000000000000000000000!"))
}

func TestNewArtifactFilename(t *testing.T) {
	u := New()
	at := time.Date(2026, 8, 25, 10, 30, 45, 0, time.UTC)

	name := u.NewArtifactFilename("data:image/png;base64,xxxx", at)

	require.True(t, strings.HasPrefix(name, "20260825_103045_"))
	require.True(t, strings.HasSuffix(name, ".png"))
	// 32 hex chars between the timestamp prefix and the extension.
	middle := strings.TrimSuffix(strings.TrimPrefix(name, "20260825_103045_"), ".png")
	require.Len(t, middle, 32)
}

func TestNewArtifactFilename_DefaultExtension(t *testing.T) {
	u := New()

	name := u.NewArtifactFilename("rawbase64withoutmarker", time.Now())
	require.True(t, strings.HasSuffix(name, ".jpg"))
}

func TestDecodeBase64Payload(t *testing.T) {
	u := New()
	encoded := base64.StdEncoding.EncodeToString([]byte("image bytes"))

	data, err := u.DecodeBase64Payload("data:image/jpeg;base64," + encoded)
	require.NoError(t, err)
	require.Equal(t, []byte("image bytes"), data)

	_, err = u.DecodeBase64Payload("%%% not base64 %%%")
	require.ErrorIs(t, err, imaging.ErrInvalidEncoding)
}

func TestConvertBytesToBase64_RoundTrip(t *testing.T) {
	u := New()

	encoded := u.ConvertBytesToBase64([]byte{1, 2, 3})
	data, err := u.DecodeBase64Payload(encoded)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)
}
