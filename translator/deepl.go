package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	deeplFreeEndpoint = "https://api-free.deepl.com/v2/translate"
	deeplProEndpoint  = "https://api.deepl.com/v2/translate"

	// DeepL signals an exhausted character quota with this custom status.
	deeplStatusQuotaExceeded = 456
)

// DeepL translates through the DeepL API. The free and paid plans use
// different hosts, selected by the Pro flag.
type DeepL struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// DeepLOptions configures the DeepL backend.
type DeepLOptions struct {
	Pro        bool
	Endpoint   string // override for tests
	HTTPClient *http.Client
}

// NewDeepL creates the DeepL backend.
func NewDeepL(apiKey string, opts DeepLOptions) *DeepL {
	d := &DeepL{apiKey: apiKey, endpoint: deeplFreeEndpoint, http: opts.HTTPClient}
	if opts.Pro {
		d.endpoint = deeplProEndpoint
	}
	if opts.Endpoint != "" {
		d.endpoint = opts.Endpoint
	}
	if d.http == nil {
		d.http = &http.Client{}
	}
	return d
}

func (d *DeepL) Name() string { return "deepl" }

type deeplRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

// Translate performs a single /v2/translate request. An "auto" source omits
// source_lang so DeepL detects the language itself.
func (d *DeepL) Translate(ctx context.Context, text, source, target string) (Result, error) {
	if d.apiKey == "" {
		return Result{}, NewError(KindConfiguration, "DeepL API key is not set")
	}

	reqBody := deeplRequest{Text: []string{text}, TargetLang: strings.ToUpper(target)}
	if source != "" && source != "auto" {
		reqBody.SourceLang = strings.ToUpper(source)
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, WrapError(KindTransport, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return Result{}, WrapError(KindTransport, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	resp, err := d.http.Do(req)
	if err != nil {
		return Result{}, WrapError(KindTransport, "translation request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, WrapError(KindTransport, "read response", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusUnauthorized:
		return Result{}, NewError(KindAuthentication, "DeepL rejected the API key")
	case deeplStatusQuotaExceeded:
		return Result{}, NewError(KindQuota, "DeepL translation quota exceeded for this billing period")
	case http.StatusTooManyRequests:
		return Result{}, NewError(KindQuota, "DeepL rate limited, try again later")
	default:
		var decoded deeplResponse
		if json.Unmarshal(body, &decoded) == nil && decoded.Message != "" {
			return Result{}, NewError(KindUpstreamFormat, fmt.Sprintf("DeepL request failed: %s", decoded.Message))
		}
		return Result{}, NewError(KindUpstreamFormat, fmt.Sprintf("DeepL request failed with status %d", resp.StatusCode))
	}

	var decoded deeplResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Result{}, WrapError(KindUpstreamFormat, "decode response", err)
	}
	if len(decoded.Translations) == 0 {
		return Result{}, NewError(KindUpstreamFormat, "empty translation result")
	}

	first := decoded.Translations[0]
	src := strings.ToLower(first.DetectedSourceLanguage)
	if src == "" {
		src = source
	}
	return Result{Text: first.Text, SourceLanguage: src}, nil
}
