package s3storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"masonry_grid/internal/storage"
	"masonry_grid/internal/storage/s3storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockS3 struct {
	mock.Mock
}

func (m *MockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *MockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*s3.GetObjectOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func keyIs(key string) interface{} {
	return mock.MatchedBy(func(in interface{}) bool {
		switch v := in.(type) {
		case *s3.PutObjectInput:
			return *v.Key == key
		case *s3.GetObjectInput:
			return *v.Key == key
		case *s3.DeleteObjectInput:
			return *v.Key == key
		}
		return false
	})
}

func TestS3FileStorage_PutRead(t *testing.T) {
	ctx := context.Background()
	client := new(MockS3)
	fs := s3storage.NewWithClient(client, "grids", "/site-1/", "https://cdn.test", 1<<20)

	client.On("PutObject", ctx, keyIs("site-1/generic/x/manifest.json")).Return(nil).Once()
	require.NoError(t, fs.Put(ctx, "generic/x/manifest.json", []byte(`{}`), "application/json"))

	client.On("GetObject", ctx, keyIs("site-1/generic/x/manifest.json")).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(`{}`)))}, nil).Once()
	data, err := fs.Read(ctx, "generic/x/manifest.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	client.On("GetObject", ctx, keyIs("site-1/missing.json")).Return(nil, &types.NoSuchKey{}).Once()
	_, err = fs.Read(ctx, "missing.json")
	assert.ErrorIs(t, err, storage.ErrFileNotFound)

	client.On("GetObject", ctx, keyIs("site-1/broken.json")).Return(nil, errors.New("throttled")).Once()
	_, err = fs.Read(ctx, "broken.json")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrFileNotFound)

	client.AssertExpectations(t)
}

func TestS3FileStorage_Limits(t *testing.T) {
	fs := s3storage.NewWithClient(new(MockS3), "grids", "", "https://cdn.test", 4)

	err := fs.Put(context.Background(), "a.json", []byte("12345"), "")
	assert.ErrorIs(t, err, storage.ErrFileTooLarge)
}

func TestS3FileStorage_URL(t *testing.T) {
	fs := s3storage.NewWithClient(new(MockS3), "grids", "site-1", "https://cdn.test/", 0)

	u := fs.URL("generic/x/manifest.json")
	assert.Equal(t, "https://cdn.test/site-1/generic/x/manifest.json", u)

	rel, err := fs.PathFromURL(u + "?cache=1")
	require.NoError(t, err)
	assert.Equal(t, "generic/x/manifest.json", rel)

	_, err = fs.PathFromURL("https://cdn.test/other/generic/x/manifest.json")
	assert.ErrorIs(t, err, storage.ErrForeignURL)
}

func TestS3FileStorage_Delete(t *testing.T) {
	ctx := context.Background()
	client := new(MockS3)
	fs := s3storage.NewWithClient(client, "grids", "", "https://cdn.test", 0)

	client.On("DeleteObject", ctx, keyIs("generic/a.json")).Return(errors.New("denied")).Once()
	assert.Error(t, fs.Delete(ctx, "generic/a.json"))
	client.AssertExpectations(t)
}
