package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"

	"stockify/internal/apperr"
	"stockify/internal/ids"
	"stockify/internal/media/imagetype"
	"stockify/internal/media/svg"
)

const (
	KindUserAvatar   = "avatars/users"
	KindClientAvatar = "avatars/clients"
	KindBrandLogo    = "logos"
)

// ObjectStorage is the subset of storage.ObjectStore used for images.
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// ImageUploader stores avatar and logo images.
type ImageUploader interface {
	Upload(ctx context.Context, kind string, file *multipart.FileHeader) (StoredObject, error)
	Discard(ctx context.Context, key *string)
}

type StoredObject struct {
	Key string
	URL string
}

type UploadService struct {
	store    ObjectStorage
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
}

func NewUploadService(store ObjectStorage, maxBytes int64, log zerolog.Logger) *UploadService {
	return &UploadService{
		store:    store,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

func (s *UploadService) Upload(ctx context.Context, kind string, file *multipart.FileHeader) (StoredObject, error) {
	if s.store == nil {
		return StoredObject{}, apperr.New(http.StatusServiceUnavailable, "Image uploads are not available")
	}
	if file == nil {
		return StoredObject{}, apperr.Validation("Image file is required")
	}
	if file.Size > s.maxBytes {
		return StoredObject{}, apperr.Validation(fmt.Sprintf("Image must be at most %s", humanBytes(s.maxBytes)))
	}

	f, err := file.Open()
	if err != nil {
		return StoredObject{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return StoredObject{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return StoredObject{}, apperr.Validation(fmt.Sprintf("Image must be at most %s", humanBytes(s.maxBytes)))
	}
	if len(data) == 0 {
		return StoredObject{}, apperr.Validation("Image file is empty")
	}

	head := data
	if len(head) > imagetype.HeadSize {
		head = head[:imagetype.HeadSize]
	}
	kindOf, err := imagetype.Detect(head)
	if err != nil {
		return StoredObject{}, apperr.Validation("Only jpeg, png, gif, webp, avif or svg images are allowed")
	}
	if !imagetype.Matches(imagetype.DeclaredMIME(file.Header), kindOf) {
		return StoredObject{}, apperr.Validation("File content does not match its declared type")
	}

	if kindOf == imagetype.SVG {
		data, err = svg.Sanitize(data)
		if err != nil {
			if errors.Is(err, svg.ErrNotSVG) {
				return StoredObject{}, apperr.Validation("Only jpeg, png, gif, webp, avif or svg images are allowed")
			}
			return StoredObject{}, fmt.Errorf("sanitize svg: %w", err)
		}
	}

	key := s.buildObjectKey(kind, kindOf.Ext)
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), kindOf.MIME); err != nil {
		return StoredObject{}, &apperr.Error{
			Status:  http.StatusInternalServerError,
			Message: "Something went wrong while uploading image",
			Err:     err,
		}
	}

	return StoredObject{Key: key, URL: s.store.PublicURL(key)}, nil
}

// Discard deletes a previously stored object. Failures are logged only;
// an orphaned object never blocks the request that replaced it.
func (s *UploadService) Discard(ctx context.Context, key *string) {
	if s.store == nil || key == nil || *key == "" {
		return
	}
	if err := s.store.Delete(ctx, *key); err != nil {
		s.log.Warn().Err(err).Str("object_key", *key).Msg("delete replaced image failed")
	}
}

func (s *UploadService) buildObjectKey(kind, ext string) string {
	datePrefix := s.now().UTC().Format("2006/01/02")
	return path.Join(kind, datePrefix, fmt.Sprintf("%s.%s", ids.New(), ext))
}

func humanBytes(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	if n >= 1<<10 {
		return fmt.Sprintf("%d KB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
