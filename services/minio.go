package services

import (
	goContext "context"
	"fmt"
	"io"
	"os"

	appContext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MinioService stores player avatars, the one binary asset the game serves.
type MinioService struct {
	appContext.DefaultService

	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
}

const MINIO_SVC = "minio_svc"

var avatarContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

func (svc MinioService) Id() string {
	return MINIO_SVC
}

func (svc *MinioService) Configure(ctx *appContext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	if svc.endpoint == "" {
		svc.endpoint = "localhost:9000"
	}

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	if svc.accessKey == "" {
		svc.accessKey = "admin"
	}

	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	if svc.secretKey == "" {
		svc.secretKey = "password123"
	}

	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "colortap-avatars"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinioService) Start() error {
	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	log.Printf("MinIO service started with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *MinioService) ensureBucket() error {
	ctx := goContext.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created bucket: %s", svc.bucketName)
	}

	return nil
}

// AllowedAvatarType reports whether contentType is an accepted avatar format.
func AllowedAvatarType(contentType string) bool {
	_, ok := avatarContentTypes[contentType]
	return ok
}

// UploadAvatar stores the avatar for userID, replacing any previous one, and
// returns its public URL.
func (svc *MinioService) UploadAvatar(userID string, reader io.Reader, size int64, contentType string) (string, error) {
	ext, ok := avatarContentTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported avatar content type: %s", contentType)
	}

	objectName := fmt.Sprintf("avatars/%s%s", userID, ext)

	_, err := svc.client.PutObject(goContext.Background(), svc.bucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %v", err)
	}

	scheme := "http"
	if svc.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, svc.endpoint, svc.bucketName, objectName), nil
}
