package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

const deeplURL = "https://api-free.deepl.com/v1/translate"

// DeepL posts JSON with a DeepL-Auth-Key bearer-style header. The target
// language code must be uppercased on the wire.
type DeepL struct {
	Endpoint string
	APIKey   string
	client   *http.Client
}

func NewDeepL(apiKey string) *DeepL {
	return &DeepL{Endpoint: deeplURL, APIKey: apiKey, client: newHTTPClient()}
}

func (p *DeepL) Name() string       { return "DeepL" }
func (p *DeepL) MaxCharacters() int { return 50000 }

func (p *DeepL) Translate(ctx context.Context, text, from, to string) Result {
	if text == "" {
		return success("", from, to, p.Name())
	}
	if utf8.RuneCountInString(text) > p.MaxCharacters() {
		return failure(text, from, to, p.Name(), exceedsLimitErr(p.MaxCharacters()))
	}
	if p.APIKey == "" {
		return failure(text, from, to, p.Name(), errors.New("no API key configured"))
	}

	payload, err := json.Marshal(map[string]any{
		"text":        []string{text},
		"target_lang": strings.ToUpper(to),
	})
	if err != nil {
		return failure(text, from, to, p.Name(), transportErr(err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure(text, from, to, p.Name(), transportErr(err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+p.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return failure(text, from, to, p.Name(), transportErr(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(text, from, to, p.Name(), statusErr(resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(text, from, to, p.Name(), transportErr(err))
	}

	var parsed struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil || len(parsed.Translations) == 0 {
		return failure(text, from, to, p.Name(), errParse)
	}
	return success(parsed.Translations[0].Text, from, to, p.Name())
}
