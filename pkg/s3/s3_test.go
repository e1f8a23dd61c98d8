package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/config"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(config.S3Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, ErrNoBucket)
}

func TestPresignDownload(t *testing.T) {
	c, err := New(config.S3Config{
		Endpoint:        "https://storage.example.com",
		Region:          "us-east-1",
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
		Bucket:          "exams",
	})
	require.NoError(t, err)

	raw, err := c.PresignDownload(context.Background(), "exams/p-1/report.pdf", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "storage.example.com", u.Host)
	assert.Equal(t, "/exams/exams/p-1/report.pdf", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "inline", u.Query().Get("response-content-disposition"))
}

func TestObjectKey(t *testing.T) {
	owner := uuid.New()
	k := ObjectKey("exams", owner, "Blood Panel.PDF")

	assert.True(t, strings.HasPrefix(k, "exams/"+owner.String()+"/"))
	assert.True(t, strings.HasSuffix(k, ".pdf"))
	assert.NotEqual(t, k, ObjectKey("exams", owner, "Blood Panel.PDF"))
	assert.NotContains(t, ObjectKey("exams", owner, "noext"), ".")
}
