package artifact

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type s3Store struct {
	client     *s3.S3
	session    *session.Session
	bucketName string
}

// NewS3Store uploads artifacts to S3 under category-prefixed keys. Used by
// deployments without a persistent local disk.
func NewS3Store() (Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return &s3Store{
		client:     s3.New(sess),
		session:    sess,
		bucketName: os.Getenv("AWS_BUCKET_NAME"),
	}, nil
}

func (s *s3Store) Save(category, filename string, data []byte) (string, string, error) {
	key := fmt.Sprintf("%s/%s", category, filename)

	uploader := s3manager.NewUploader(s.session)
	uploadOutput, err := uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", "", err
	}

	return uploadOutput.Location, key, nil
}

func (s *s3Store) Delete(key string) error {
	// Accept either a bare key or a full object URL.
	if parts := strings.Split(key, ".com/"); len(parts) > 1 {
		key = parts[1]
	}

	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return err
}
