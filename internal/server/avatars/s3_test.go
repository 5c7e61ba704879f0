package avatars

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/addressbook/internal/common"
	sc "github.com/dmitrijs2005/addressbook/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "avatars",
		S3PublicURL:    "https://cdn.example/avatars/",
	}
}

func stubAWS(t *testing.T) *string {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origPut := putObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		putObject = origPut
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	var baseEndpoint string
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint != nil {
			baseEndpoint = *opts.BaseEndpoint
		}
		if !opts.UsePathStyle {
			t.Fatalf("path-style addressing expected")
		}
		return &s3.Client{}
	}
	return &baseEndpoint
}

func TestNewS3Storage(t *testing.T) {
	endpoint := stubAWS(t)

	st, err := NewS3Storage(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", *endpoint)
	assert.Equal(t, "https://cdn.example/avatars/avatars/u-1/x.png", st.URL("avatars/u-1/x.png"))
}

func TestNewS3Storage_ConfigError(t *testing.T) {
	stubAWS(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Storage(context.Background(), testConfig())
	require.Error(t, err)
}

func TestS3Storage_Put(t *testing.T) {
	stubAWS(t)

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		got = in
		b, err := io.ReadAll(in.Body)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	st, err := NewS3Storage(context.Background(), testConfig())
	require.NoError(t, err)

	url, err := st.Put(context.Background(), "avatars/u-1/abc.png", pngHeader, "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example/avatars/avatars/u-1/abc.png", url)
	require.NotNil(t, got)
	assert.Equal(t, "avatars", aws.ToString(got.Bucket))
	assert.Equal(t, "avatars/u-1/abc.png", aws.ToString(got.Key))
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.Equal(t, int64(len(pngHeader)), aws.ToInt64(got.ContentLength))
	assert.Equal(t, pngHeader, body)
}

func TestS3Storage_PutError(t *testing.T) {
	stubAWS(t)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		return errors.New("bucket gone")
	}

	st, err := NewS3Storage(context.Background(), testConfig())
	require.NoError(t, err)

	_, err = st.Put(context.Background(), "k", pngHeader, "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Contains(t, err.Error(), "bucket gone")
}
