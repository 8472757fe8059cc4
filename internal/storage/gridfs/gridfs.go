package gridfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"rentListings/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultContentType = "application/octet-stream"

type Options struct {
	URI      string
	Database string
	Bucket   string
	// PublicURL is the externally visible base of the service; blobs are
	// served back under PublicURL + "/images/".
	PublicURL string
}

// ImageStore keeps listing photos in a GridFS bucket, addressed by their
// storage path used as the GridFS filename.
type ImageStore struct {
	client    *mongo.Client
	db        *mongo.Database
	bucket    string
	publicURL string
}

func New(ctx context.Context, opts Options) (*ImageStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("gridfs: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("gridfs: ping: %w", err)
	}

	return &ImageStore{
		client:    client,
		db:        client.Database(opts.Database),
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
	}, nil
}

func (s *ImageStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *ImageStore) URL(path string) string {
	return s.publicURL + "/images/" + path
}

// open returns a bucket bound to ctx's deadline. Buckets carry their deadlines
// as state, so every operation gets its own.
func (s *ImageStore) open(ctx context.Context) (*gridfs.Bucket, error) {
	opts := options.GridFSBucket()
	if s.bucket != "" {
		opts.SetName(s.bucket)
	}

	bucket, err := gridfs.NewBucket(s.db, opts)
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := bucket.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}

	return bucket, nil
}

func (s *ImageStore) Upload(ctx context.Context, path string, contentType string, body io.Reader) (string, error) {
	bucket, err := s.open(ctx)
	if err != nil {
		return "", fmt.Errorf("gridfs: upload %s: %w", path, err)
	}

	if contentType == "" {
		contentType = defaultContentType
	}
	uploadOpts := options.GridFSUpload().SetMetadata(bson.M{
		"contentType": contentType,
		"uploadedAt":  time.Now().UTC(),
	})

	if _, err := bucket.UploadFromStream(path, body, uploadOpts); err != nil {
		return "", fmt.Errorf("gridfs: upload %s: %w", path, err)
	}

	return s.URL(path), nil
}

func (s *ImageStore) Open(ctx context.Context, path string) (io.ReadCloser, string, error) {
	bucket, err := s.open(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("gridfs: open %s: %w", path, err)
	}

	stream, err := bucket.OpenDownloadStreamByName(path)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", storage.ErrNotFound
		}
		return nil, "", fmt.Errorf("gridfs: open %s: %w", path, err)
	}

	contentType := defaultContentType
	if file := stream.GetFile(); file != nil && len(file.Metadata) > 0 {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok && ct != "" {
			contentType = ct
		}
	}

	return stream, contentType, nil
}

// Delete removes every revision stored under path. A missing path is not an
// error.
func (s *ImageStore) Delete(ctx context.Context, path string) error {
	bucket, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("gridfs: delete %s: %w", path, err)
	}

	cursor, err := bucket.Find(bson.M{"filename": path})
	if err != nil {
		return fmt.Errorf("gridfs: delete %s: %w", path, err)
	}

	var files []struct {
		Id primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("gridfs: delete %s: %w", path, err)
	}

	for _, f := range files {
		if err := bucket.Delete(f.Id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("gridfs: delete %s: %w", path, err)
		}
	}

	return nil
}
