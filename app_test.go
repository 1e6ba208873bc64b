package socialgram

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_ENV", "test")
	t.Setenv("SOCIALGRAM_DB_DRIVER", "sqlite")
	t.Setenv("SOCIALGRAM_SQLITE_PATH", filepath.Join(dir, "socialgram.db"))
	t.Setenv("SOCIALGRAM_REDIS_URL", "")
	t.Setenv("SOCIALGRAM_METRICS_TEXTFILE", filepath.Join(dir, "socialgram.prom"))
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	return dir
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Run(args, &out))
	return out.String()
}

func TestMigrateSeedExportRoundTrip(t *testing.T) {
	dir := setEnv(t)

	assert.Contains(t, run(t, "migrate"), "schema is up to date")
	assert.Contains(t, run(t, "seed"), "seed data loaded")

	prom, err := os.ReadFile(filepath.Join(dir, "socialgram.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `socialgram_db_writes_total{op="create",table="follower"} 2`)

	var post map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(run(t, "export-post", "1")), &post))
	assert.EqualValues(t, 1, post["id"])
	media := post["media"].([]interface{})
	require.Len(t, media, 2)
	assert.Equal(t, "s3://socialgram-media/steven/intro.mp4", media[1].(map[string]interface{})["url"])
	assert.Len(t, post["comments"], 1)

	require.NoError(t, json.Unmarshal([]byte(run(t, "export-post", "-presign", "1")), &post))
	media = post["media"].([]interface{})
	assert.Equal(t, "https://cdn.example.com/steven/cover.jpg", media[0].(map[string]interface{})["url"])
	assert.Contains(t, media[1].(map[string]interface{})["url"], "X-Amz-Signature=")
}

func TestSeedReset(t *testing.T) {
	setEnv(t)
	run(t, "migrate")
	run(t, "seed")

	var out bytes.Buffer
	assert.Error(t, Run([]string{"seed"}, &out))
	assert.Contains(t, run(t, "seed", "-reset"), "seed data loaded")
}

func TestExportMissingPost(t *testing.T) {
	setEnv(t)
	run(t, "migrate")

	var out bytes.Buffer
	assert.Error(t, Run([]string{"export-post", "7"}, &out))
	assert.ErrorIs(t, Run([]string{"export-post"}, &out), ErrUsage)
	assert.Error(t, Run([]string{"export-post", "abc"}, &out))
}

func TestDeletePost(t *testing.T) {
	setEnv(t)
	run(t, "migrate")
	run(t, "seed")

	assert.Contains(t, run(t, "delete-post", "1"), "deleted post 1")

	var out bytes.Buffer
	assert.Error(t, Run([]string{"export-post", "1"}, &out))
	assert.Error(t, Run([]string{"delete-post", "1"}, &out))
	assert.Contains(t, run(t, "export-post", "2"), `"id":2`)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, Run(nil, &out), ErrUsage)

	err := Run([]string{"serve"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "serve"`)
}
