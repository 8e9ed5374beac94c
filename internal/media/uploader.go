// Package media uploads user images to an external CDN. The size ceilings
// are enforced on the caller side, before any network I/O.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

var ErrTooLarge = errors.New("file exceeds the upload size limit")

type UploaderInterface interface {
	// UploadAvatar enforces the avatar/banner ceiling (5MB by default).
	UploadAvatar(ctx context.Context, filename string, data []byte) (string, error)
	// UploadNewsImage enforces the news-image ceiling (8MB by default).
	UploadNewsImage(ctx context.Context, filename string, data []byte) (string, error)
}

type Uploader struct {
	conf   *structures.Config
	logger providers.Logger
	http   *http.Client
}

func NewUploader(conf *structures.Config, logger providers.Logger) UploaderInterface {
	return &Uploader{
		conf:   conf,
		logger: logger,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (u *Uploader) UploadAvatar(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) > u.conf.Media.MaxAvatarBytes {
		return "", fmt.Errorf("%w (%d bytes, limit %d)", ErrTooLarge, len(data), u.conf.Media.MaxAvatarBytes)
	}
	return u.upload(ctx, filename, data)
}

func (u *Uploader) UploadNewsImage(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) > u.conf.Media.MaxNewsImageBytes {
		return "", fmt.Errorf("%w (%d bytes, limit %d)", ErrTooLarge, len(data), u.conf.Media.MaxNewsImageBytes)
	}
	return u.upload(ctx, filename, data)
}

// upload does an unsigned multipart upload and returns the hosted URL.
func (u *Uploader) upload(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err = part.Write(data); err != nil {
		return "", err
	}
	if err = writer.WriteField("upload_preset", u.conf.Media.UploadPreset); err != nil {
		return "", err
	}
	if err = writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.conf.Media.UploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("media upload: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("media upload failed with status %d", resp.StatusCode)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return "", errors.New("media upload returned no url")
}
