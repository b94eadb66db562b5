package client

import (
	"compliance-registry/internal/config"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// FileStorage issues time-limited signed URLs for uploaded object keys
// (company logos, score certificates) and checks that a key exists before
// it is referenced by a record.
type FileStorage interface {
	SignedURL(ctx context.Context, key string) (url string, expiresIn int, err error)
	Exists(ctx context.Context, key string) (bool, error)
}

type fileStorageImpl struct {
	httpClient    *http.Client
	baseURL       string
	signingSecret string
	expirySeconds int
}

func NewFileStorage(cfg *config.Storage) FileStorage {
	return &fileStorageImpl{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:       cfg.BaseURL,
		signingSecret: cfg.SigningSecret,
		expirySeconds: cfg.ExpirySeconds,
	}
}

func (s *fileStorageImpl) SignedURL(_ context.Context, key string) (string, int, error) {
	if key == "" {
		return "", 0, fmt.Errorf("empty object key")
	}

	expires := time.Now().Add(time.Duration(s.expirySeconds) * time.Second).Unix()
	mac := hmac.New(sha256.New, []byte(s.signingSecret))
	mac.Write([]byte(key + "\n" + strconv.FormatInt(expires, 10)))
	sig := hex.EncodeToString(mac.Sum(nil))

	url := fmt.Sprintf("%s/%s?expires=%d&signature=%s", s.baseURL, key, expires, sig)
	return url, s.expirySeconds, nil
}

func (s *fileStorageImpl) Exists(ctx context.Context, key string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.baseURL+"/"+key, nil)
	if err != nil {
		return false, fmt.Errorf("http new request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
