package blobs

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/bardfile/internal/errors"
)

type fakeS3 struct {
	objects map[string]*s3.PutObjectInput
	sizes   map[string]int64
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]*s3.PutObjectInput{}, sizes: map[string]int64{}}
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentType:   obj.ContentType,
		ContentLength: aws.Int64(f.sizes[aws.ToString(in.Key)]),
		Metadata:      obj.Metadata,
	}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.objects[aws.ToString(in.Key)] = in
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	s := NewS3Store(client, "bucket", "uploads/")

	info, err := s.Put(ctx, Info{Filename: "cat.png", ContentType: "image/png", ByteSize: 512})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := client.objects["uploads/"+info.SignedID]; !ok {
		t.Fatalf("object not written under prefix, have %v", client.objects)
	}

	got, err := s.Info(ctx, info.SignedID)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if got != info {
		t.Errorf("Info = %+v, want %+v", got, info)
	}
}

func TestS3StoreObjectWithoutMetadata(t *testing.T) {
	client := newFakeS3()
	client.objects["raw"] = &s3.PutObjectInput{}
	client.sizes["raw"] = 99

	got, err := NewS3Store(client, "bucket", "").Info(context.Background(), "raw")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	want := Info{Filename: "raw", ContentType: "application/octet-stream", ByteSize: 99, SignedID: "raw"}
	if got != want {
		t.Errorf("Info = %+v, want %+v", got, want)
	}
}

func TestS3StoreErrors(t *testing.T) {
	client := newFakeS3()
	s := NewS3Store(client, "bucket", "")

	_, err := s.Info(context.Background(), "nope")
	if !errors.HasCode(err, errors.ErrBlobNotFound) {
		t.Errorf("missing object error = %v, want %s", err, errors.ErrBlobNotFound)
	}

	boom := stderrors.New("connection reset")
	client.headErr = boom
	_, err = s.Info(context.Background(), "nope")
	if !errors.HasCode(err, errors.ErrBlobStore) {
		t.Errorf("backend error = %v, want %s", err, errors.ErrBlobStore)
	}
	if !stderrors.Is(err, boom) {
		t.Error("backend error should wrap the client error")
	}
}
