// Package voice wraps the speech edge of the call: transcription in,
// synthesized audio out. Only the model identifiers are owned here; voice
// activity detection and turn taking belong to the telephony runtime.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	APIKey   string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	BaseURL  string        `envconfig:"BASE_URL" split_words:"true"`
	STTModel string        `envconfig:"STT_MODEL" split_words:"true" default:"whisper-1"`
	TTSModel string        `envconfig:"TTS_MODEL" split_words:"true" default:"tts-1"`
	Voice    string        `envconfig:"VOICE" split_words:"true" default:"alloy"`
	Timeout  time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
}

// Engine is the STT/TTS adapter over the OpenAI audio API.
type Engine struct {
	client   openai.Client
	sttModel string
	ttsModel string
	voice    string
}

func NewEngine(cfg Config) (*Engine, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("voice api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	return &Engine{
		client:   openai.NewClient(opts...),
		sttModel: strings.TrimSpace(cfg.STTModel),
		ttsModel: strings.TrimSpace(cfg.TTSModel),
		voice:    strings.TrimSpace(cfg.Voice),
	}, nil
}

// Transcribe turns one utterance of audio into text.
func (e *Engine) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if audio == nil {
		return "", errors.New("audio reader is nil")
	}
	if strings.TrimSpace(filename) == "" {
		filename = "utterance.wav"
	}

	resp, err := e.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, "audio/wav"),
		Model: openai.AudioModel(e.sttModel),
	})
	if err != nil {
		return "", fmt.Errorf("voice: transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Synthesize renders one reply as audio. The caller owns closing the
// returned body.
func (e *Engine) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is empty")
	}

	resp, err := e.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model: openai.SpeechModel(e.ttsModel),
		Voice: openai.AudioSpeechNewParamsVoice(e.voice),
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("voice: synthesize: %w", err)
	}
	return resp.Body, nil
}
