package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

const myMemoryURL = "https://api.mymemory.translated.net/get"

// MyMemory queries the free MyMemory endpoint. Its effective per-request
// budget is ~500 characters, so larger inputs are word-chunked. Responses
// sometimes arrive percent-encoded (occasionally double-encoded), so the
// text is decoded iteratively with a bounded pass count.
type MyMemory struct {
	Endpoint string
	client   *http.Client
}

func NewMyMemory() *MyMemory {
	return &MyMemory{Endpoint: myMemoryURL, client: newHTTPClient()}
}

func (p *MyMemory) Name() string       { return "MyMemory" }
func (p *MyMemory) MaxCharacters() int { return 10000 }

const myMemoryChunkBase = 480

func (p *MyMemory) Translate(ctx context.Context, text, from, to string) Result {
	if text == "" {
		return success("", from, to, p.Name())
	}
	if utf8.RuneCountInString(text) > p.MaxCharacters() {
		return failure(text, from, to, p.Name(), exceedsLimitErr(p.MaxCharacters()))
	}

	return translateChunked(ctx, text, from, to, myMemoryChunkBase, p.Name(),
		func(ctx context.Context, chunk string) (string, error) {
			return p.translateChunk(ctx, chunk, from, to)
		})
}

func (p *MyMemory) translateChunk(ctx context.Context, chunk, from, to string) (string, error) {
	q := url.Values{}
	q.Set("q", chunk)
	q.Set("langpair", from+"|"+to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", transportErr(err)
	}

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

	var parsed struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.ResponseData.TranslatedText == "" {
		return "", errParse
	}

	return DecodeMyMemoryText(parsed.ResponseData.TranslatedText), nil
}

// DecodeMyMemoryText normalizes MyMemory's sporadically percent-encoded
// payloads: a broken "% 20" form is repaired, percent escapes are decoded
// iteratively (bounded to 5 passes, the encoding is sometimes stacked),
// and any surviving %0A becomes a real newline. Surrounding spaces are
// trimmed, newlines preserved.
func DecodeMyMemoryText(text string) string {
	text = strings.ReplaceAll(text, "% ", "%")

	prev := ""
	for passes := 0; prev != text && strings.Contains(text, "%") && passes < 5; passes++ {
		prev = text
		if decoded, err := url.PathUnescape(text); err == nil {
			text = decoded
		}
	}

	text = strings.ReplaceAll(text, "%0A", "\n")
	return strings.Trim(text, " \t")
}
