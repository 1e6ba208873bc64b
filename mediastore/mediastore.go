package mediastore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	aws2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store turns s3://bucket/key media URLs into presigned HTTPS links.
type Store struct {
	presign *s3.PresignClient
	expiry  time.Duration
}

func New(ctx context.Context, region string, expiry time.Duration) (*Store, error) {
	if region == "" {
		region = "us-east-2"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newFromConfig(cfg, expiry), nil
}

func newFromConfig(cfg aws2.Config, expiry time.Duration) *Store {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &Store{presign: s3.NewPresignClient(client), expiry: expiry}
}

// ResolveURL returns raw untouched unless it names an S3 object.
func (s *Store) ResolveURL(ctx context.Context, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "s3" {
		return raw, nil
	}

	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", fmt.Errorf("invalid s3 url %q", raw)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws2.String(bucket),
		Key:    aws2.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", raw, err)
	}
	return req.URL, nil
}

// ResolvePostMedia rewrites the url of every media entry in a decoded post
// snapshot.
func (s *Store) ResolvePostMedia(ctx context.Context, post map[string]interface{}) error {
	items, _ := post["media"].([]interface{})
	for _, item := range items {
		media, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		raw, ok := media["url"].(string)
		if !ok {
			continue
		}
		resolved, err := s.ResolveURL(ctx, raw)
		if err != nil {
			return err
		}
		media["url"] = resolved
	}
	return nil
}
