package mediastore

import (
	"context"
	"testing"
	"time"

	aws2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() *Store {
	return newFromConfig(aws2.Config{
		Region:      "us-east-2",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}, 15*time.Minute)
}

func TestResolveURLPassesThroughHTTP(t *testing.T) {
	raw := "https://cdn.example.com/1.jpg"
	got, err := testStore().ResolveURL(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestResolveURLPresignsS3Objects(t *testing.T) {
	got, err := testStore().ResolveURL(context.Background(), "s3://socialgram-media/posts/1/cover.jpg")
	require.NoError(t, err)

	assert.Contains(t, got, "https://")
	assert.Contains(t, got, "/socialgram-media/posts/1/cover.jpg")
	assert.Contains(t, got, "X-Amz-Signature=")
	assert.Contains(t, got, "X-Amz-Expires=900")
}

func TestResolveURLRejectsIncompleteS3URL(t *testing.T) {
	_, err := testStore().ResolveURL(context.Background(), "s3://socialgram-media")
	assert.Error(t, err)
}

func TestResolvePostMedia(t *testing.T) {
	post := map[string]interface{}{
		"id": float64(1),
		"media": []interface{}{
			map[string]interface{}{"type": "image", "url": "s3://socialgram-media/a.jpg"},
			map[string]interface{}{"type": "video", "url": "https://cdn.example.com/b.mp4"},
		},
	}

	require.NoError(t, testStore().ResolvePostMedia(context.Background(), post))

	media := post["media"].([]interface{})
	assert.Contains(t, media[0].(map[string]interface{})["url"], "X-Amz-Signature=")
	assert.Equal(t, "https://cdn.example.com/b.mp4", media[1].(map[string]interface{})["url"])
}
