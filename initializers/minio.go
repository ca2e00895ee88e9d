package initializers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"
)

// MinioConfig holds the object storage settings for code images.
type MinioConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UseSSL           bool
	MaxSize          int64
	ImageTypes       []string
	Expiry           time.Duration
	ExternalEndpoint string
	ExternalUseSSL   bool
}

var MinioClient *minio.Client
var ExternalMinioClient *minio.Client
var Conf MinioConfig

// imagesConfigYAML defines optional YAML configuration for image upload
// settings. If present, it overrides environment variables.
type imagesConfigYAML struct {
	MaxFileSize        int64    `yaml:"max_file_size"`
	AllowedImageTypes  []string `yaml:"allowed_image_types"`
	PresignedURLExpiry int      `yaml:"presigned_url_expiry"` // seconds
}

func loadImagesConfig() (*imagesConfigYAML, error) {
	path := os.Getenv("IMAGES_CONFIG_FILE")
	if strings.TrimSpace(path) == "" {
		path = "config/images.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg imagesConfigYAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitMinio connects to object storage and ensures the code images
// bucket exists. When MINIO_EXTERNAL_ENDPOINT differs from the internal
// endpoint, a second client is kept for generating presigned URLs that
// are reachable from outside the deployment network.
func InitMinio() error {
	Conf = MinioConfig{
		Endpoint:         os.Getenv("MINIO_ENDPOINT"),
		AccessKey:        os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey:        os.Getenv("MINIO_SECRET_KEY"),
		Bucket:           envOrDefault("MINIO_BUCKET", "code-images"),
		UseSSL:           parseBool(os.Getenv("MINIO_USE_SSL")),
		MaxSize:          parseInt64(os.Getenv("MAX_IMAGE_SIZE"), 5242880),
		ImageTypes:       parseImageTypes(os.Getenv("ALLOWED_IMAGE_TYPES")),
		Expiry:           parseExpiry(os.Getenv("PRESIGNED_URL_EXPIRY")),
		ExternalEndpoint: os.Getenv("MINIO_EXTERNAL_ENDPOINT"),
		ExternalUseSSL: func() bool {
			raw := strings.TrimSpace(os.Getenv("MINIO_EXTERNAL_ENDPOINT"))
			if v := strings.TrimSpace(os.Getenv("MINIO_EXTERNAL_USE_SSL")); v != "" {
				return parseBool(v)
			}
			if strings.HasPrefix(raw, "https://") {
				return true
			}
			if strings.HasPrefix(raw, "http://") {
				return false
			}
			return parseBool(os.Getenv("MINIO_USE_SSL"))
		}(),
	}

	if yamlCfg, err := loadImagesConfig(); err == nil && yamlCfg != nil {
		if yamlCfg.MaxFileSize > 0 {
			Conf.MaxSize = yamlCfg.MaxFileSize
		}
		if len(yamlCfg.AllowedImageTypes) > 0 {
			Conf.ImageTypes = yamlCfg.AllowedImageTypes
		}
		if yamlCfg.PresignedURLExpiry > 0 {
			Conf.Expiry = time.Duration(yamlCfg.PresignedURLExpiry) * time.Second
		}
	}

	client, err := minio.New(Conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(Conf.AccessKey, Conf.SecretKey, ""),
		Secure: Conf.UseSSL,
	})
	if err != nil {
		return err
	}
	MinioClient = client
	exists, errBucket := client.BucketExists(context.Background(), Conf.Bucket)
	if errBucket != nil {
		return errBucket
	}
	if !exists {
		errCreate := client.MakeBucket(context.Background(), Conf.Bucket, minio.MakeBucketOptions{})
		if errCreate != nil {
			return errCreate
		}
	}

	extEndpoint := Conf.ExternalEndpoint
	extEndpoint = strings.TrimPrefix(extEndpoint, "http://")
	extEndpoint = strings.TrimPrefix(extEndpoint, "https://")
	if extEndpoint == "" || extEndpoint == Conf.Endpoint {
		ExternalMinioClient = MinioClient
	} else {
		external, err := minio.New(extEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(Conf.AccessKey, Conf.SecretKey, ""),
			Secure: Conf.ExternalUseSSL,
			Region: "us-east-1",
		})
		if err != nil {
			return err
		}
		ExternalMinioClient = external
	}

	slog.Info("minio bucket ready", "bucket", Conf.Bucket)
	return nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseBool(val string) bool {
	return strings.ToLower(val) == "true"
}

func parseInt64(val string, def int64) int64 {
	if val == "" {
		return def
	}
	v, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func parseImageTypes(val string) []string {
	if val == "" {
		return []string{"image/jpeg", "image/png", "image/webp"}
	}
	return strings.Split(val, ",")
}

func parseExpiry(val string) time.Duration {
	if val == "" {
		return time.Hour
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return time.Hour
	}
	return time.Duration(v) * time.Second
}

func baseMIME(mime string) string {
	if mime == "" {
		return ""
	}
	parts := strings.Split(mime, ";")
	return strings.TrimSpace(parts[0])
}

// CheckImageAllowed validates an upload against the size and MIME policy.
func CheckImageAllowed(size int64, mime string) error {
	if size > Conf.MaxSize {
		return fmt.Errorf("file size exceeds the limit")
	}
	incoming := baseMIME(mime)
	for _, t := range Conf.ImageTypes {
		if baseMIME(t) == incoming {
			return nil
		}
	}
	return fmt.Errorf("file type is not allowed")
}

// PutImage stores an image object keyed by the catalog record id.
// Re-uploading replaces the previous object.
func PutImage(ctx context.Context, id string, r io.Reader, size int64, contentType string) error {
	_, err := MinioClient.PutObject(ctx, Conf.Bucket, id, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// HasStoredImage reports whether an uploaded image object exists for the
// catalog record id.
func HasStoredImage(ctx context.Context, id string) bool {
	if MinioClient == nil {
		return false
	}
	_, err := MinioClient.StatObject(ctx, Conf.Bucket, id, minio.StatObjectOptions{})
	return err == nil
}

// ImageRef returns the stable reference stored in the catalog's image
// column once an object has been uploaded for the record.
func ImageRef(id string) string {
	return fmt.Sprintf("minio://%s/%s", Conf.Bucket, id)
}

// GenerateImageURL creates a presigned GET URL for a stored code image.
func GenerateImageURL(id string, code int) (string, error) {
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("inline; filename=\"%d\"", code))

	client := ExternalMinioClient
	if client == nil {
		client = MinioClient
	}
	presignedURL, err := client.PresignedGetObject(context.Background(), Conf.Bucket, id, Conf.Expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to create presigned url: %v", err)
	}
	return presignedURL.String(), nil
}
