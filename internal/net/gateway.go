package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNoAnnotation is returned by Load when nothing has been saved yet.
var ErrNoAnnotation = errors.New("no saved annotation")

// Gateway stores and retrieves annotation images keyed by annotation type.
type Gateway interface {
	Save(ctx context.Context, annotateType, dataURI string) error
	Load(ctx context.Context, annotateType string) (string, error)
	Fetch(ctx context.Context, imageURL string) (image.Image, error)
}

// saveRequest is the body posted to the annotation endpoint.
type saveRequest struct {
	AnnotateType string `json:"annotateType"`
	Image        string `json:"image"`
}

// response is the JSON reply of both save and load.
type response struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// HTTPGateway talks to an annotation endpoint over HTTP.
type HTTPGateway struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

var _ Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(endpoint, token string) *HTTPGateway {
	return &HTTPGateway{
		Endpoint: endpoint,
		Token:    token,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *HTTPGateway) Save(ctx context.Context, annotateType, dataURI string) error {
	body, err := json.Marshal(saveRequest{AnnotateType: annotateType, Image: dataURI})
	if err != nil {
		return err
	}
	u, err := g.url(annotateType)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.Token != "" {
		req.Header.Set(TokenHeader, g.Token)
	}

	resp, err := g.do(req)
	if err != nil {
		return fmt.Errorf("save %s: %w", annotateType, err)
	}
	if !resp.Success {
		return fmt.Errorf("save %s: %s", annotateType, resp.Error)
	}
	return nil
}

// Load returns the URL of the saved image for annotateType.
func (g *HTTPGateway) Load(ctx context.Context, annotateType string) (string, error) {
	u, err := g.url(annotateType)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}

	resp, err := g.do(req)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", annotateType, err)
	}
	if !resp.Success {
		if resp.Error == "" {
			return "", ErrNoAnnotation
		}
		return "", fmt.Errorf("load %s: %s", annotateType, resp.Error)
	}
	return resp.ImageURL, nil
}

// Fetch downloads and decodes an image. Relative URLs are resolved against
// the endpoint.
func (g *HTTPGateway) Fetch(ctx context.Context, imageURL string) (image.Image, error) {
	base, err := url.Parse(g.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	ref, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("parse image url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, err
	}
	res, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: %s", res.Status)
	}

	img, _, err := image.Decode(res.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (g *HTTPGateway) url(annotateType string) (string, error) {
	u, err := url.Parse(g.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("annotate_type", annotateType)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (g *HTTPGateway) do(req *http.Request) (*response, error) {
	res, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: invalid response: %w", res.Status, err)
	}
	return &out, nil
}
