package media

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/pulse-social/pulse/pkg/config"
	"github.com/pulse-social/pulse/pkg/logging"
)

// Uploader issues time-limited upload authorizations for post images. The
// backend never touches the bytes; clients PUT directly to object storage
// and send back the public URL.
type Uploader struct {
	s3Client   *s3.S3
	bucket     string
	presignTTL time.Duration
}

// NewUploader creates an uploader, or nil when media storage is not
// configured. A nil uploader is valid; the media endpoint then reports the
// feature as unavailable.
func NewUploader(cfg *config.MediaConfig) (*Uploader, error) {
	if cfg.AccessKeyID == "" {
		logging.GetLogger().Info("Media uploads disabled")
		return nil, nil
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}

	// Support MinIO for local development
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &Uploader{
		s3Client:   s3.New(sess),
		bucket:     cfg.Bucket,
		presignTTL: cfg.PresignTTL,
	}, nil
}

// UploadTicket authorizes one upload: PUT the bytes to UploadURL before
// ExpiresAt, then reference PublicURL from the post.
type UploadTicket struct {
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PresignUpload creates an upload ticket for a single image
func (u *Uploader) PresignUpload(filename, contentType string) (*UploadTicket, error) {
	key := fmt.Sprintf("posts/%s%s", uuid.New().String(), path.Ext(filename))

	req, _ := u.s3Client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})

	uploadURL, err := req.Presign(u.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &UploadTicket{
		UploadURL: uploadURL,
		PublicURL: u.publicURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(u.presignTTL),
	}, nil
}

// publicURL builds the retrieval URL for a stored object
func (u *Uploader) publicURL(key string) string {
	endpoint := aws.StringValue(u.s3Client.Config.Endpoint)
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		// MinIO URL format
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("https://%s/%s/%s", endpoint, u.bucket, key)
	}

	// AWS S3 URL format
	region := aws.StringValue(u.s3Client.Config.Region)
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, region, key)
}
