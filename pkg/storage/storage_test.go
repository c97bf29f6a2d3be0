package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, Config{Type: TypeLocal, Local: LocalConfig{BasePath: t.TempDir(), BaseURL: "https://cdn.example.com/"}})
	require.NoError(t, err)

	key := "tenants/tnt-1/doc-18c2f0a1b23-3f9a2b7c-4d2e"
	require.NoError(t, s.Write(ctx, key, strings.NewReader("png bytes"), 9, "image/png"))

	rc, err := s.Read(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png bytes", string(body))

	u, err := s.GetURL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+key, u)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting twice is fine")

	_, err = s.Read(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageStaysInBase(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStorage(LocalConfig{BasePath: base})
	require.NoError(t, err)

	p, err := s.fullPath("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, s.basePath), p)

	_, err = s.fullPath("..")
	assert.Error(t, err)
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(context.Background(), Config{Type: "gcs"})
	assert.Error(t, err)
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(aws.ToString(in.Key), aws.ToString(in.ContentType))
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(aws.ToString(in.Key))
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	s := NewS3StorageWithClient(client, nil, "launch-assets", "https://assets.example.com/")

	client.On("PutObject", "tenants/a/logo", "image/png").Return(nil)
	client.On("GetObject", "tenants/a/logo").Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("x")))}, nil)
	client.On("GetObject", "tenants/a/missing").Return(nil, &types.NoSuchKey{})
	client.On("GetObject", "tenants/a/denied").Return(nil, errors.New("AccessDenied"))
	client.On("DeleteObject", "tenants/a/logo").Return(nil)

	require.NoError(t, s.Write(ctx, "tenants/a/logo", strings.NewReader("x"), 1, "image/png"))

	rc, err := s.Read(ctx, "tenants/a/logo")
	require.NoError(t, err)
	rc.Close()

	_, err = s.Read(ctx, "tenants/a/missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Read(ctx, "tenants/a/denied")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "tenants/a/logo"))

	u, err := s.GetURL(ctx, "tenants/a/logo", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://assets.example.com/tenants/a/logo", u)

	client.AssertExpectations(t)

	_, err = NewS3StorageWithClient(client, nil, "b", "").GetURL(ctx, "k", 0)
	assert.Error(t, err)
}
