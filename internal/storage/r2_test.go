package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	objects map[string][]byte
	types   map[string]string
	failGet error
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[*in.Bucket+"/"+*in.Key] = data
	m.types[*in.Bucket+"/"+*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (m *memObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.failGet != nil {
		return nil, m.failGet
	}
	data, ok := m.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestUploadDownload(t *testing.T) {
	objs := newMemObjects()
	r2 := New(objs, "resumes-bucket")
	ctx := context.Background()

	require.NoError(t, r2.Upload(ctx, "resumes/a.pdf", "application/pdf", []byte("%PDF-1.4")))
	assert.Equal(t, "application/pdf", objs.types["resumes-bucket/resumes/a.pdf"])

	data, err := r2.Download(ctx, "resumes/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	_, err = r2.Download(ctx, "resumes/missing.pdf")
	assert.ErrorContains(t, err, "NoSuchKey")
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("Ada CV.PDF")
	assert.True(t, strings.HasPrefix(key, "resumes/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotEqual(t, key, ObjectKey("Ada CV.PDF"))
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", Config{AccountID: "acct"}.endpoint())
	assert.Equal(t, "http://localhost:9000", Config{AccountID: "acct", Endpoint: "http://localhost:9000"}.endpoint())
}
