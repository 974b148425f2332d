package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
)

const DefaultPinataURL = "https://api.pinata.cloud"

type PinataCredentials struct {
	JWT       string
	APIKey    string
	APISecret string
}

// Pinata talks to the Pinata pinning REST API.
type Pinata struct {
	httpClient *http.Client
	baseURL    string
	creds      PinataCredentials
}

type pinataMetadata struct {
	Name string `json:"name"`
}

type pinJSONRequest struct {
	PinataContent  any            `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func NewPinata(baseURL string, creds PinataCredentials, timeout time.Duration) *Pinata {
	if baseURL == "" {
		baseURL = DefaultPinataURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Pinata{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
	}
}

// TestAuthentication wraps GET /data/testAuthentication.
func (p *Pinata) TestAuthentication(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/data/testAuthentication", nil)
	if err != nil {
		return err
	}
	_, err = p.do(req)
	return err
}

// PinFile wraps POST /pinning/pinFileToIPFS.
func (p *Pinata) PinFile(ctx context.Context, name string, content []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile(constants.UploadFieldName, name)
	if err != nil {
		return "", err
	}
	if _, err = part.Write(content); err != nil {
		return "", err
	}
	meta, _ := json.Marshal(pinataMetadata{Name: name})
	if err = mw.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", err
	}
	if err = mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return p.pin(req)
}

// PinJSON wraps POST /pinning/pinJSONToIPFS.
func (p *Pinata) PinJSON(ctx context.Context, name string, doc any) (string, error) {
	b, err := json.Marshal(pinJSONRequest{
		PinataContent:  doc,
		PinataMetadata: pinataMetadata{Name: name},
	})
	if err != nil {
		return "", errors.Wrap(err, "pinata: encode json pin")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/pinning/pinJSONToIPFS", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	return p.pin(req)
}

func (p *Pinata) pin(req *http.Request) (string, error) {
	body, err := p.do(req)
	if err != nil {
		return "", err
	}

	var out pinResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errors.Wrap(err, "pinata: decode pin response")
	}
	id, err := ParseLocator(out.IpfsHash)
	if err != nil {
		return "", err
	}
	return Locator(id), nil
}

func (p *Pinata) do(req *http.Request) ([]byte, error) {
	p.authorize(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "pinata: %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "pinata: read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Message: upstreamMessage(resp.StatusCode, body)}
	}
	return body, nil
}

func (p *Pinata) authorize(req *http.Request) {
	if p.creds.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+p.creds.JWT)
		return
	}
	if p.creds.APIKey != "" {
		req.Header.Set("pinata_api_key", p.creds.APIKey)
		req.Header.Set("pinata_secret_api_key", p.creds.APISecret)
	}
}

// upstreamMessage prefers body.error (as text, or its details/reason), then
// the raw body, then the status text.
func upstreamMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		e := gjson.GetBytes(body, "error")
		switch {
		case e.Type == gjson.String && e.Str != "":
			return e.Str
		case e.IsObject():
			for _, key := range []string{"details", "reason", "message"} {
				if v := e.Get(key); v.Type == gjson.String && v.Str != "" {
					return v.Str
				}
			}
			return e.Raw
		}
		if m := gjson.GetBytes(body, "message"); m.Type == gjson.String && m.Str != "" {
			return m.Str
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return http.StatusText(status)
}
