package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"
)

const googleWebURL = "https://translate.googleapis.com/translate_a/single"

// GoogleWeb queries the unofficial web endpoint with URL-encoded text.
// The endpoint is rate-limited, so inputs are chunked at word boundaries.
type GoogleWeb struct {
	Endpoint string
	client   *http.Client
}

func NewGoogleWeb() *GoogleWeb {
	return &GoogleWeb{Endpoint: googleWebURL, client: newHTTPClient()}
}

func (p *GoogleWeb) Name() string       { return "Google Translate" }
func (p *GoogleWeb) MaxCharacters() int { return 5000 }

// chunkBase keeps individual request URLs well under length limits.
const googleChunkBase = 1500

func (p *GoogleWeb) Translate(ctx context.Context, text, from, to string) Result {
	if text == "" {
		return success("", from, to, p.Name())
	}
	if utf8.RuneCountInString(text) > p.MaxCharacters() {
		return failure(text, from, to, p.Name(), exceedsLimitErr(p.MaxCharacters()))
	}

	return translateChunked(ctx, text, from, to, googleChunkBase, p.Name(),
		func(ctx context.Context, chunk string) (string, error) {
			return p.translateChunk(ctx, chunk, from, to)
		})
}

func (p *GoogleWeb) translateChunk(ctx context.Context, chunk, from, to string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", from)
	q.Set("tl", to)
	q.Set("dt", "t")
	q.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", transportErr(err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusErr(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportErr(err)
	}

	// Response is a nested array: [[["translated","original",...],...],...].
	// The translation is the first string of the first sub-array.
	var payload []any
	if err := json.Unmarshal(data, &payload); err != nil || len(payload) == 0 {
		return "", errParse
	}
	sets, ok := payload[0].([]any)
	if !ok {
		return "", errParse
	}
	for _, set := range sets {
		entry, ok := set.([]any)
		if !ok || len(entry) == 0 {
			continue
		}
		if translated, ok := entry[0].(string); ok {
			return translated, nil
		}
	}
	return "", errParse
}
