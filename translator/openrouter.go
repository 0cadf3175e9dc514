package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1/"

// DefaultPrompt is the stock chat-model prompt template. The two
// placeholders, {{targetLanguage}} and {{message}}, are the only
// substitutions performed.
const DefaultPrompt = "You are a translator. Translate the following message into {{targetLanguage}}. " +
	"Reply with the translated message only, without quotes or commentary.\n\n{{message}}"

// OpenRouter translates by prompting a chat model through the OpenRouter
// API, which speaks the OpenAI wire protocol. The model does not report a
// detected source language, so results carry the SourceLLM sentinel.
type OpenRouter struct {
	apiKey string
	model  string
	prompt string
	client openai.Client
}

// OpenRouterOptions configures the chat-model backend.
type OpenRouterOptions struct {
	Prompt     string // template; empty selects DefaultPrompt
	BaseURL    string // override for tests
	HTTPClient *http.Client
}

// NewOpenRouter creates the chat-model backend.
func NewOpenRouter(apiKey, model string, opts OpenRouterOptions) *OpenRouter {
	baseURL := openRouterBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHeader("HTTP-Referer", "https://github.com/matty/chattrans"),
		option.WithHeader("X-Title", "chattrans"),
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &OpenRouter{
		apiKey: apiKey,
		model:  model,
		prompt: opts.Prompt,
		client: openai.NewClient(reqOpts...),
	}
}

func (o *OpenRouter) Name() string { return "openrouter" }

// Translate renders the prompt template for one message and sends a single
// chat completion.
func (o *OpenRouter) Translate(ctx context.Context, text, source, target string) (Result, error) {
	if err := o.checkConfig(); err != nil {
		return Result{}, err
	}

	content, err := o.complete(ctx, renderPrompt(o.prompt, languageName(target), text))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: content, SourceLanguage: SourceLLM}, nil
}

// TranslateBatch sends all texts in one request and asks the model for a
// JSON array back. A reply of the wrong length is logged and used as far as
// it goes, matched by position; it is not an error by itself.
func (o *OpenRouter) TranslateBatch(ctx context.Context, texts []string, source, target string) ([]Result, error) {
	if err := o.checkConfig(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, WrapError(KindTransport, "marshal batch", err)
	}
	prompt := fmt.Sprintf(
		"Translate each string in the following JSON array into %s. "+
			"Respond with only a JSON array of %d strings in the same order, with no commentary.\n\n%s",
		languageName(target), len(texts), payload)

	content, err := o.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := parseBatchReply(content)
	if err != nil {
		return nil, err
	}
	if len(parsed) != len(texts) {
		slog.Warn("batch translation count mismatch",
			"requested", len(texts), "returned", len(parsed), "model", o.model)
	}
	if len(parsed) > len(texts) {
		parsed = parsed[:len(texts)]
	}

	results := make([]Result, len(parsed))
	for i, t := range parsed {
		results[i] = Result{Text: t, SourceLanguage: SourceLLM}
	}
	return results, nil
}

// ListModels fetches the model catalog, sorted by display name. The SDK's
// model type drops OpenRouter's display name, so this goes through the raw
// request path with a local response shape.
func (o *OpenRouter) ListModels(ctx context.Context) ([]Model, error) {
	var decoded struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := o.client.Get(ctx, "models", nil, &decoded); err != nil {
		return nil, mapAPIError(err, "list models failed")
	}

	models := make([]Model, 0, len(decoded.Data))
	for _, m := range decoded.Data {
		name := m.Name
		if name == "" {
			name = m.ID
		}
		models = append(models, Model{ID: m.ID, Name: name})
	}
	slices.SortFunc(models, func(a, b Model) int {
		return strings.Compare(a.Name, b.Name)
	})
	return models, nil
}

func (o *OpenRouter) checkConfig() error {
	if o.apiKey == "" {
		return NewError(KindConfiguration, "OpenRouter API key is not set")
	}
	if o.model == "" {
		return NewError(KindConfiguration, "no OpenRouter model selected")
	}
	return nil
}

func (o *OpenRouter) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", mapAPIError(err, "translation request failed")
	}
	if len(resp.Choices) == 0 {
		return "", NewError(KindUpstreamFormat, "model returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", NewError(KindUpstreamFormat, "empty translation result")
	}
	return content, nil
}

// mapAPIError classifies an openai-go failure into the local taxonomy.
func mapAPIError(err error, message string) *Error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return WrapError(KindAuthentication, "OpenRouter rejected the API key", err)
		case http.StatusPaymentRequired:
			return WrapError(KindQuota, "OpenRouter credits exhausted", err)
		case http.StatusTooManyRequests:
			return WrapError(KindQuota, "OpenRouter rate limited, try again later", err)
		default:
			return WrapError(KindUpstreamFormat,
				fmt.Sprintf("OpenRouter request failed with status %d", apierr.StatusCode), err)
		}
	}
	return WrapError(KindTransport, message, err)
}

// renderPrompt substitutes the two template placeholders.
func renderPrompt(tmpl, targetLanguage, message string) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultPrompt
	}
	return strings.NewReplacer(
		"{{targetLanguage}}", targetLanguage,
		"{{message}}", message,
	).Replace(tmpl)
}

// parseBatchReply expects a JSON array of strings but meets models halfway:
// fenced code blocks, an object wrapping a single array value, or stray prose
// around the array are all accepted.
func parseBatchReply(content string) ([]string, error) {
	content = strings.TrimSpace(content)
	if after, ok := strings.CutPrefix(content, "```"); ok {
		after = strings.TrimPrefix(after, "json")
		if inner, ok := strings.CutSuffix(strings.TrimSpace(after), "```"); ok {
			content = strings.TrimSpace(inner)
		}
	}

	var arr []string
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return arr, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		for _, raw := range obj {
			if json.Unmarshal(raw, &arr) == nil {
				return arr, nil
			}
		}
	}

	if i, j := strings.Index(content, "["), strings.LastIndex(content, "]"); i >= 0 && j > i {
		if json.Unmarshal([]byte(content[i:j+1]), &arr) == nil {
			return arr, nil
		}
	}

	return nil, NewError(KindUpstreamFormat, "model reply is not a JSON array of strings")
}
