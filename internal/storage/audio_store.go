package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/iiuc-platform/interview-service/internal/config"
	"github.com/iiuc-platform/interview-service/internal/utils"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AudioStore persists recorded answer audio and returns a stable URL for
// the stored object.
type AudioStore interface {
	PutAnswerAudio(ctx context.Context, sessionID, questionID, audioBase64 string) (string, error)
	EnsureBucket(ctx context.Context) error
}

type minioAudioStore struct {
	client *minio.Client
	bucket string
	logger utils.Logger
}

func NewMinioAudioStore(cfg *config.Config, logger utils.Logger) (AudioStore, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &minioAudioStore{
		client: client,
		bucket: cfg.S3Bucket,
		logger: logger,
	}, nil
}

func (s *minioAudioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Created audio bucket", "bucket", s.bucket)
	return nil
}

// PutAnswerAudio decodes the client's base64 payload and stores it under
// sessions/<session>/answers/<question>.webm.
func (s *minioAudioStore) PutAnswerAudio(ctx context.Context, sessionID, questionID, audioBase64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return "", fmt.Errorf("invalid audio payload: %w", err)
	}

	objectName := fmt.Sprintf("sessions/%s/answers/%s.webm", sessionID, questionID)
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "audio/webm",
	})
	if err != nil {
		return "", fmt.Errorf("failed to store answer audio: %w", err)
	}

	url := fmt.Sprintf("s3://%s/%s", s.bucket, objectName)
	s.logger.DebugContext(ctx, "Stored answer audio",
		"session_id", sessionID,
		"question_id", questionID,
		"bytes", len(data))
	return url, nil
}
