package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(params)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(params)
	if out := args.Get(0); out != nil {
		return out.(*s3.DeleteObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestS3StoreSave(t *testing.T) {
	client := new(MockS3Client)
	client.On("PutObject", mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "banners" &&
			strings.HasPrefix(aws.ToString(in.Key), "images/") &&
			strings.HasSuffix(aws.ToString(in.Key), ".gif") &&
			aws.ToString(in.ContentType) == "image/gif" &&
			aws.ToInt64(in.ContentLength) == int64(len(gifHeader))
	})).Return(&s3.PutObjectOutput{}, nil)

	s := newS3Store(client, "banners")

	path, err := s.Save(context.Background(), Upload{Filename: "banner.gif", Data: gifHeader})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "images/"))
	client.AssertExpectations(t)
}

func TestS3StoreSaveErrors(t *testing.T) {
	t.Run("invalid upload never reaches the bucket", func(t *testing.T) {
		client := new(MockS3Client)
		s := newS3Store(client, "banners")

		_, err := s.Save(context.Background(), Upload{Data: []byte("text")})
		assert.Equal(t, ErrUnsupportedImage, err)
		client.AssertNotCalled(t, "PutObject", mock.Anything)
	})

	t.Run("put failure", func(t *testing.T) {
		client := new(MockS3Client)
		client.On("PutObject", mock.Anything).Return(nil, errors.New("bucket unavailable"))
		s := newS3Store(client, "banners")

		path, err := s.Save(context.Background(), Upload{Data: pngHeader})
		assert.EqualError(t, err, "bucket unavailable")
		assert.Empty(t, path)
	})
}

func TestS3StoreDelete(t *testing.T) {
	client := new(MockS3Client)
	client.On("DeleteObject", &s3.DeleteObjectInput{
		Bucket: aws.String("banners"),
		Key:    aws.String("images/abc.png"),
	}).Return(&s3.DeleteObjectOutput{}, nil)

	s := newS3Store(client, "banners")

	err := s.Delete(context.Background(), "images/abc.png")
	assert.NoError(t, err)

	err = s.Delete(context.Background(), "secrets/abc.png")
	assert.Equal(t, ErrInvalidPath, err)

	client.AssertNumberOfCalls(t, "DeleteObject", 1)
}
