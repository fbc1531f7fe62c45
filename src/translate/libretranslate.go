package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"unicode/utf8"
)

const libreTranslateURL = "https://libretranslate.com/translate"

// LibreTranslate posts multipart form data to the public LibreTranslate
// instance. Large character budget, no chunking.
type LibreTranslate struct {
	Endpoint string
	client   *http.Client
}

func NewLibreTranslate() *LibreTranslate {
	return &LibreTranslate{Endpoint: libreTranslateURL, client: newHTTPClient()}
}

func (p *LibreTranslate) Name() string       { return "LibreTranslate" }
func (p *LibreTranslate) MaxCharacters() int { return 50000 }

func (p *LibreTranslate) Translate(ctx context.Context, text, from, to string) Result {
	if text == "" {
		return success("", from, to, p.Name())
	}
	if utf8.RuneCountInString(text) > p.MaxCharacters() {
		return failure(text, from, to, p.Name(), exceedsLimitErr(p.MaxCharacters()))
	}

	source := from
	if source == "" || source == "auto" {
		source = "auto"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"q":      text,
		"source": source,
		"target": to,
		"format": "text",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return failure(text, from, to, p.Name(), transportErr(err))
		}
	}
	if err := mw.Close(); err != nil {
		return failure(text, from, to, p.Name(), transportErr(err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, &body)
	if err != nil {
		return failure(text, from, to, p.Name(), transportErr(err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)

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
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.TranslatedText == "" {
		return failure(text, from, to, p.Name(), errParse)
	}
	return success(parsed.TranslatedText, from, to, p.Name())
}
