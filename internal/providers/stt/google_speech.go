package stt

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

const DefaultLanguage = "en-US"

type GoogleSpeechConfig struct {
	Encoding     string // LINEAR16, FLAC, OGG_OPUS, WEBM_OPUS, MULAW
	SampleRateHz int32
	Model        string // e.g. "latest_short"; empty uses the API default
}

type GoogleSpeech struct {
	c *speech.Client

	encoding     speechpb.RecognitionConfig_AudioEncoding
	sampleRateHz int32
	model        string
}

func NewGoogleSpeech(ctx context.Context, cfg GoogleSpeechConfig) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.SampleRateHz <= 0 {
		cfg.SampleRateHz = 16000
	}
	return &GoogleSpeech{
		c:            c,
		encoding:     ParseEncoding(cfg.Encoding),
		sampleRateHz: cfg.SampleRateHz,
		model:        cfg.Model,
	}, nil
}

// ParseEncoding maps a config value to the API enum, defaulting to LINEAR16.
func ParseEncoding(v string) speechpb.RecognitionConfig_AudioEncoding {
	v = strings.ToUpper(strings.TrimSpace(v))
	if e, ok := speechpb.RecognitionConfig_AudioEncoding_value[v]; ok && e != 0 {
		return speechpb.RecognitionConfig_AudioEncoding(e)
	}
	return speechpb.RecognitionConfig_LINEAR16
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

func (g *GoogleSpeech) request(audio []byte, language string) *speechpb.RecognizeRequest {
	if language == "" {
		language = DefaultLanguage
	}
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   g.encoding,
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
		Model:                      g.model,
	}
	// container formats carry their own rate
	if g.encoding != speechpb.RecognitionConfig_WEBM_OPUS && g.encoding != speechpb.RecognitionConfig_FLAC {
		cfg.SampleRateHertz = g.sampleRateHz
	}
	return &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
}

// language example: "en-US", "id-ID"
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	resp, err := g.c.Recognize(ctx, g.request(audio, language))
	if err != nil {
		return "", 0, err
	}
	text, conf := joinResults(resp.GetResults())
	return text, conf, nil
}

// joinResults concatenates the top alternative of every result, which cover
// consecutive portions of the audio, and averages their confidence.
func joinResults(results []*speechpb.SpeechRecognitionResult) (string, float64) {
	var parts []string
	var sum float64
	for _, r := range results {
		alts := r.GetAlternatives()
		if len(alts) == 0 || strings.TrimSpace(alts[0].GetTranscript()) == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(alts[0].GetTranscript()))
		sum += float64(alts[0].GetConfidence())
	}
	if len(parts) == 0 {
		return "", 0
	}
	return strings.Join(parts, " "), sum / float64(len(parts))
}
