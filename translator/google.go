package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const googleEndpoint = "https://translate.googleapis.com/translate_a/single"

// Google translates through the free web endpoint. No credential is needed;
// the source language may be "auto" and the detected language is reported.
type Google struct {
	endpoint string
	http     *http.Client
}

// GoogleOptions configures the free backend.
type GoogleOptions struct {
	Endpoint   string // override for tests
	HTTPClient *http.Client
}

// NewGoogle creates the free backend.
func NewGoogle(opts GoogleOptions) *Google {
	g := &Google{endpoint: googleEndpoint, http: opts.HTTPClient}
	if opts.Endpoint != "" {
		g.endpoint = opts.Endpoint
	}
	if g.http == nil {
		g.http = &http.Client{}
	}
	return g
}

func (g *Google) Name() string { return "google" }

type googleResponse struct {
	Sentences []struct {
		Trans string `json:"trans"`
	} `json:"sentences"`
	Src string `json:"src"`
}

// Translate performs a single gtx-client request.
func (g *Google) Translate(ctx context.Context, text, source, target string) (Result, error) {
	if source == "" {
		source = "auto"
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("dj", "1")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, WrapError(KindTransport, "create request", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return Result{}, WrapError(KindTransport, "translation request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, WrapError(KindTransport, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, NewError(KindQuota, "translation rate limited, try again later")
	case resp.StatusCode != http.StatusOK:
		return Result{}, NewError(KindUpstreamFormat, fmt.Sprintf("translation failed with status %d", resp.StatusCode))
	}

	var decoded googleResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Result{}, WrapError(KindUpstreamFormat, "decode response", err)
	}
	if len(decoded.Sentences) == 0 {
		return Result{}, NewError(KindUpstreamFormat, "empty translation result")
	}

	var b strings.Builder
	for _, s := range decoded.Sentences {
		b.WriteString(s.Trans)
	}

	src := decoded.Src
	if src == "" {
		src = source
	}
	return Result{Text: b.String(), SourceLanguage: src}, nil
}
