// Package pinclient is the client side of the pin backend's HTTP API.
package pinclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

const pinImagePath = "/api/pin-image"

type Client struct {
	httpClient *http.Client
	baseURL    string
}

type pinImageResponse struct {
	MetadataURL string `json:"metadataUrl"`
}

type healthResponse struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// PinImage wraps POST /api/pin-image and returns the metadata locator.
func (c *Client) PinImage(ctx context.Context, filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", failure.MissingContent("pinclient: no file selected")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(constants.UploadFieldName, filename)
	if err != nil {
		return "", err
	}
	if _, err = part.Write(content); err != nil {
		return "", err
	}
	if err = mw.Close(); err != nil {
		return "", err
	}

	url := c.baseURL + pinImagePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", failure.Wrap(err, failure.ErrValidation, "pinclient: build request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", failure.WithContext(ctx, failure.Wrapf(err, failure.ErrPinService, "pinclient: POST %s", url))
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", failure.Wrap(
			fmt.Errorf("backend request failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes))),
			failure.ErrPinService, "pinclient: pin image")
	}

	var out pinImageResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return "", failure.Wrap(err, failure.ErrPinService, "pinclient: decode pin response")
	}
	if out.MetadataURL == "" {
		return "", failure.Wrap(errMissingMetadataURL, failure.ErrPinService, "pinclient: pin image")
	}
	return out.MetadataURL, nil
}

// Health wraps GET /health.
func (c *Client) Health(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return time.Time{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, failure.WithContext(ctx, failure.Wrap(err, failure.ErrPinService, "pinclient: health"))
	}
	defer resp.Body.Close()

	var out healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return time.Time{}, failure.Wrap(err, failure.ErrPinService, "pinclient: decode health")
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return time.Time{}, failure.Wrapf(errUnhealthy, failure.ErrPinService, "pinclient: health status %d", resp.StatusCode)
	}
	return time.UnixMilli(out.TS), nil
}

var (
	errMissingMetadataURL = errors.New("backend did not return a valid metadata URL")
	errUnhealthy          = errors.New("backend is not healthy")
)

// ===== base URL resolution =====

var codespaceHost = regexp.MustCompile(`^(.+)-\d+\.app\.github\.dev$`)

const codespaceDomain = ".app.github.dev"

// ResolveBaseURL picks the backend URL: an explicit URL wins (trailing slash
// dropped), then a Codespaces forwarded host is rewritten to the backend
// port, then localhost.
func ResolveBaseURL(explicit, host string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	host = strings.ToLower(strings.TrimSpace(host))
	if m := codespaceHost.FindStringSubmatch(host); m != nil {
		return "https://" + m[1] + "-" + constants.DefaultPinServerPort + codespaceDomain
	}
	return "http://localhost:" + constants.DefaultPinServerPort
}

// CodespaceHost returns the forwarded host for the backend port of the named
// codespace, or "" outside Codespaces.
func CodespaceHost(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return name + "-" + constants.DefaultPinServerPort + codespaceDomain
}
