package stream

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/yoockh/buuzzer/internal/models"
)

const streamPath = "/api/ai/stream"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the request carried in the stream URL.
type Payload struct {
	Provider string    `json:"provider"`
	Messages []Message `json:"messages"`
}

func NewPayload(p models.Provider, pair models.PromptPair) Payload {
	return Payload{
		Provider: p.BackendID(),
		Messages: []Message{
			{Role: "system", Content: pair.System},
			{Role: "user", Content: pair.User},
		},
	}
}

// EncodePayload returns base64(JSON(p)) over the UTF-8 bytes of the JSON text.
// HTML characters are left unescaped so the JSON matches a plain serializer.
func EncodePayload(p Payload) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	raw := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodePayload reverses EncodePayload.
func DecodePayload(encoded string) (Payload, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Payload{}, err
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// StreamURL embeds the encoded payload and the token as percent-encoded query
// parameters of <base>/api/ai/stream.
func StreamURL(base, encodedPayload, token string) string {
	q := url.Values{}
	q.Set("payload", encodedPayload)
	q.Set("token", token)
	return strings.TrimRight(base, "/") + streamPath + "?" + q.Encode()
}
