package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	hostagent "github.com/vaiulabs/bistro-host/agent/agents/host"
	"github.com/vaiulabs/bistro-host/agent/agents/nlu"
	llmx "github.com/vaiulabs/bistro-host/agent/llm"
	promptx "github.com/vaiulabs/bistro-host/agent/prompt"
	statex "github.com/vaiulabs/bistro-host/agent/state"
	bookingsx "github.com/vaiulabs/bistro-host/pkg/bookings"
	configx "github.com/vaiulabs/bistro-host/pkg/config"
	_ "github.com/vaiulabs/bistro-host/pkg/logger/autoload"
	openweatherx "github.com/vaiulabs/bistro-host/pkg/openweather"
	voicex "github.com/vaiulabs/bistro-host/pkg/voice"
)

type AppConfig struct {
	ChannelType  string `envconfig:"CHANNEL_TYPE" split_words:"true" default:"voice"`
	SessionStore string `envconfig:"SESSION_STORE" split_words:"true" default:"redis"`
	VoiceEnabled bool   `envconfig:"VOICE_ENABLED" split_words:"true" default:"false"`
	ReplyAudio   string `envconfig:"REPLY_AUDIO_DIR" split_words:"true" default:""`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("AGENT")

	store := newSessionStore(appCfg.SessionStore)

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	registry, err := nlu.NewRegistry(context.Background(), *llmCfg, promptx.LoadPromptSet())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build model registry")
	}

	weatherCfg := configx.MustNew[openweatherx.Config]("OPENWEATHER")
	weather, err := openweatherx.NewClient(*weatherCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build weather client")
	}

	bookingsCfg := configx.MustNew[bookingsx.Config]("BOOKINGS")
	bookings, err := bookingsx.NewClient(*bookingsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build bookings client")
	}

	var engine *voicex.Engine
	if appCfg.VoiceEnabled {
		voiceCfg := configx.MustNew[voicex.Config]("VOICE")
		engine, err = voicex.NewEngine(*voiceCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build voice engine")
		}
	}

	h, err := hostagent.New(store, registry, weather, bookings, hostagent.Config{
		ChannelType: appCfg.ChannelType,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build host")
	}

	runLoop(h, engine, appCfg.ReplyAudio)
}

func newSessionStore(kind string) statex.Store {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "memory":
		log.Info().Msg("using in-memory session store")
		return statex.NewMemoryStore()
	default:
		redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build redis session store")
		}
		return store
	}
}

// runLoop reads one utterance per line from stdin. Lines prefixed with @
// name an audio file to transcribe first; replies are then synthesized
// into replyDir when a voice engine is wired.
func runLoop(h *hostagent.Host, engine *voicex.Engine, replyDir string) {
	ctx := context.Background()
	sessionID := uuid.NewString()
	turn := 0

	log.Info().Str("session_id", sessionID).Msg("session started")
	fmt.Println("Vaiu Bistro host ready. One utterance per line; Ctrl-D hangs up.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		turn++

		if strings.HasPrefix(text, "@") {
			transcript, err := transcribeFile(ctx, engine, strings.TrimPrefix(text, "@"))
			if err != nil {
				log.Error().Err(err).Msg("transcription failed")
				continue
			}
			fmt.Printf("you said: %s\n", transcript)
			text = transcript
		}

		reply, status, err := h.HandleTurn(ctx, sessionID, text)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("turn failed")
			continue
		}

		fmt.Printf("host: %s\n", reply)
		speakReply(ctx, engine, replyDir, sessionID, turn, reply)

		if status.Terminal() {
			log.Info().Str("session_id", sessionID).Str("status", string(status)).Msg("session ended")
			sessionID = uuid.NewString()
			turn = 0
			log.Info().Str("session_id", sessionID).Msg("session started")
		}
	}

	if err := h.EndSession(ctx, sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to end session")
	}
}

func transcribeFile(ctx context.Context, engine *voicex.Engine, path string) (string, error) {
	if engine == nil {
		return "", fmt.Errorf("voice engine is not enabled")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return engine.Transcribe(ctx, f, filepath.Base(path))
}

func speakReply(ctx context.Context, engine *voicex.Engine, replyDir, sessionID string, turn int, reply string) {
	if engine == nil || replyDir == "" {
		return
	}

	audio, err := engine.Synthesize(ctx, reply)
	if err != nil {
		log.Warn().Err(err).Msg("speech synthesis failed")
		return
	}
	defer audio.Close()

	path := filepath.Join(replyDir, fmt.Sprintf("%s-%03d.mp3", sessionID, turn))
	out, err := os.Create(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to create reply audio file")
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, audio); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to write reply audio")
	}
}
