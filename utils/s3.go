package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Avatar images live in a single public bucket on an S3-compatible store.
// The bucket name defaults to "avatars" and public URLs are built by
// concatenating STORAGE_PUBLIC_URL, the bucket and the object path.

func getStorageConfig() (aws.Config, error) {
	accessKey := os.Getenv("STORAGE_ACCESS_KEY_ID")
	secretKey := os.Getenv("STORAGE_SECRET_ACCESS_KEY")

	if accessKey == "" || secretKey == "" {
		return aws.Config{}, fmt.Errorf("STORAGE_ACCESS_KEY_ID or STORAGE_SECRET_ACCESS_KEY is not set")
	}

	region := os.Getenv("STORAGE_REGION")
	if region == "" {
		region = "auto"
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load storage config: %w", err)
	}

	return cfg, nil
}

func getStorageClient() (*s3.Client, error) {
	endpoint := os.Getenv("STORAGE_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("STORAGE_ENDPOINT is not set")
	}

	cfg, err := getStorageConfig()
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return client, nil
}

// AvatarBucket returns the bucket name holding avatar objects.
func AvatarBucket() string {
	if b := os.Getenv("AVATAR_BUCKET"); b != "" {
		return b
	}
	return "avatars"
}

// UploadAvatar stores an avatar object in the avatar bucket.
func UploadAvatar(objectName string, file io.Reader, fileSize int64) error {
	client, err := getStorageClient()
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(path.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(AvatarBucket()),
		Key:         aws.String(objectName),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("avatar upload failed: %w", err)
	}

	return nil
}

// DeleteAvatar removes an avatar object from the bucket.
func DeleteAvatar(objectName string) error {
	client, err := getStorageClient()
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(AvatarBucket()),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("avatar delete failed: %w", err)
	}

	return nil
}

// PresignAvatarURL returns a presigned GET URL, for buckets that are not
// publicly readable.
func PresignAvatarURL(objectName string, expirySeconds int64) (string, error) {
	client, err := getStorageClient()
	if err != nil {
		return "", err
	}

	presigner := s3.NewPresignClient(client)

	presigned, err := presigner.PresignGetObject(context.TODO(),
		&s3.GetObjectInput{
			Bucket: aws.String(AvatarBucket()),
			Key:    aws.String(objectName),
		},
		func(po *s3.PresignOptions) {
			po.Expires = time.Duration(expirySeconds) * time.Second
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign avatar URL: %w", err)
	}

	return presigned.URL, nil
}

// PublicAvatarURL builds the public URL of a stored avatar by concatenating
// the public storage base URL, the bucket name and the object path. Returns
// an empty string when no object is stored.
func PublicAvatarURL(objectName string) string {
	if objectName == "" {
		return ""
	}
	base := strings.TrimRight(os.Getenv("STORAGE_PUBLIC_URL"), "/")
	if base == "" {
		return objectName
	}
	return base + "/" + AvatarBucket() + "/" + objectName
}
