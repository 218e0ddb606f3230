package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"dermasnap/pkg/imaging"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateULID(id string) error
	NewArtifactFilename(payload string, t time.Time) string
	DecodeBase64Payload(payload string) ([]byte, error)
	ConvertBytesToBase64(data []byte) string
}

type utils struct{}

func New() IUtils {
	return &utils{}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// ValidateULID reports whether id is a well-formed identifier. Malformed ids
// are a client error, distinct from a valid-but-absent record.
func (u *utils) ValidateULID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return errors.New("malformed identifier")
	}
	return nil
}

// NewArtifactFilename builds a collision-resistant image filename:
// timestamp prefix, random suffix, extension from the payload's declared
// MIME marker (defaulting to .jpg).
func (u *utils) NewArtifactFilename(payload string, t time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s_%s%s", t.UTC().Format("20060102_150405"), suffix, imaging.MimeExtension(payload))
}

func (u *utils) DecodeBase64Payload(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(imaging.StripDataURL(payload))
	if err != nil {
		return nil, imaging.ErrInvalidEncoding
	}
	return data, nil
}

func (u *utils) ConvertBytesToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
