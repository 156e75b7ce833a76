// Package knowledge loads the FAQ knowledge base and rule list from a file or
// an S3 object.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/cloo-solutions/askai/internal/storage"
)

// ErrSourceNotFound is returned by Source.Open when the store does not exist.
var ErrSourceNotFound = errors.New("knowledge source not found")

// Format is the serialization of a knowledge store.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor infers the format from a file name. Unknown extensions are JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Source is a persisted knowledge store.
type Source interface {
	Name() string
	Format() Format
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string   { return s.Path }
func (s FileSource) Format() Format { return FormatFor(s.Path) }

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.Path, ErrSourceNotFound)
		}
		return nil, err
	}
	return f, nil
}

// ObjectGetter fetches an object body by key.
type ObjectGetter interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
}

// S3Source reads one object from a bucket.
type S3Source struct {
	Bucket string
	Key    string
	Client ObjectGetter
}

func (s S3Source) Name() string   { return "s3://" + s.Bucket + "/" + s.Key }
func (s S3Source) Format() Format { return FormatFor(s.Key) }

func (s S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	body, err := s.Client.GetObject(ctx, s.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%s: %w", s.Name(), ErrSourceNotFound)
		}
		return nil, err
	}
	return body, nil
}

// ParseS3URI splits s3://bucket/key. ok is false for anything else.
func ParseS3URI(location string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// IsS3Location reports whether location names an S3 object.
func IsS3Location(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// SourceFor turns a configured location into a Source. S3 locations need a
// non-nil getter bound to the location's bucket.
func SourceFor(location string, getter ObjectGetter) (Source, error) {
	if !IsS3Location(location) {
		return FileSource{Path: location}, nil
	}
	bucket, key, ok := ParseS3URI(location)
	if !ok {
		return nil, fmt.Errorf("invalid S3 location %q (expected s3://bucket/key)", location)
	}
	if getter == nil {
		return nil, fmt.Errorf("S3 location %q requires S3 credentials", location)
	}
	return S3Source{Bucket: bucket, Key: key, Client: getter}, nil
}
