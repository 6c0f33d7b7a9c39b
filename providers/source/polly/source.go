// Package polly synthesizes speech into raw PCM suitable for feeding an
// opened playback stream. It is the demo's audio source; the engine itself
// never touches sample data.
package polly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"

	"github.com/lynxaudio/audiogate/api/audio"
)

const SourceID = "source-amazon-polly"

// Polly emits 16-bit mono PCM at these rates only.
var pcmRates = map[int32]bool{8000: true, 16000: true}

type synthClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Config selects the voice and output rate.
type Config struct {
	Region     string
	VoiceID    string
	Engine     string
	SampleRate int32
	Timeout    time.Duration
}

// ConfigFromEnv builds a config from the environment, falling back to the
// shared AWS region variable and then to us-east-1.
func ConfigFromEnv() Config {
	rate := int32(16000)
	if v, err := strconv.Atoi(os.Getenv("AUDIOGATE_POLLY_RATE")); err == nil && pcmRates[int32(v)] {
		rate = int32(v)
	}
	return Config{
		Region:     defaultString(os.Getenv("AUDIOGATE_POLLY_REGION"), defaultString(os.Getenv("AWS_REGION"), "us-east-1")),
		VoiceID:    defaultString(os.Getenv("AUDIOGATE_POLLY_VOICE"), "Joanna"),
		Engine:     defaultString(os.Getenv("AUDIOGATE_POLLY_ENGINE"), "neural"),
		SampleRate: rate,
		Timeout:    15 * time.Second,
	}
}

// Source synthesizes text into PCM through the Polly API.
type Source struct {
	mu     sync.Mutex
	client synthClient
	cfg    Config
}

// NewSource builds a source; the AWS client is created lazily on first use.
func NewSource(cfg Config) (*Source, error) {
	return NewSourceWithClient(cfg, nil)
}

// NewSourceWithClient builds a source around an injected client.
func NewSourceWithClient(cfg Config, client synthClient) (*Source, error) {
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}
	if strings.TrimSpace(cfg.VoiceID) == "" {
		cfg.VoiceID = "Joanna"
	}
	if strings.TrimSpace(cfg.Engine) == "" {
		cfg.Engine = "neural"
	}
	if cfg.SampleRate == audio.Unspecified {
		cfg.SampleRate = 16000
	}
	if !pcmRates[cfg.SampleRate] {
		return nil, audio.Errorf(audio.ResultInvalidRate, "pcm output supports 8000 or 16000 Hz, got %d", cfg.SampleRate)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Source{client: client, cfg: cfg}, nil
}

// SampleRate reports the PCM rate this source produces.
func (s *Source) SampleRate() int32 {
	return s.cfg.SampleRate
}

// Render synthesizes text and copies the PCM into w, returning the byte
// count. Failures carry an audio result code.
func (s *Source) Render(ctx context.Context, text string, w io.Writer) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, audio.Errorf(audio.ResultIllegalArgument, "text must not be empty")
	}
	client, err := s.resolveClient()
	if err != nil {
		return 0, err
	}

	engine := pollytypes.EngineStandard
	if strings.EqualFold(s.cfg.Engine, "neural") {
		engine = pollytypes.EngineNeural
	}
	rate := strconv.Itoa(int(s.cfg.SampleRate))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	output, err := client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:       engine,
		OutputFormat: pollytypes.OutputFormatPcm,
		SampleRate:   &rate,
		Text:         &text,
		TextType:     pollytypes.TextTypeText,
		VoiceId:      pollytypes.VoiceId(s.cfg.VoiceID),
	})
	if err != nil {
		return 0, normalizeError(err)
	}
	if output == nil || output.AudioStream == nil {
		return 0, audio.Errorf(audio.ResultInternal, "synthesis returned no audio stream")
	}
	defer output.AudioStream.Close()

	n, err := io.Copy(w, output.AudioStream)
	if err != nil {
		return n, fmt.Errorf("copy pcm: %w", err)
	}
	return n, nil
}

// normalizeError maps API failures onto the engine's result codes so demo
// callers see the same error surface as stream opens.
func normalizeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return audio.Errorf(audio.ResultTimeout, "synthesis timed out: %v", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "TooManyRequestsException":
			return audio.Errorf(audio.ResultUnavailable, "synthesis throttled: %s", apiErr.ErrorMessage())
		case "InvalidSampleRateException":
			return audio.Errorf(audio.ResultInvalidRate, "synthesis rate rejected: %s", apiErr.ErrorMessage())
		case "MarksNotSupportedForFormatException":
			return audio.Errorf(audio.ResultInvalidFormat, "synthesis format rejected: %s", apiErr.ErrorMessage())
		case "InvalidSsmlException", "TextLengthExceededException", "LexiconNotFoundException":
			return audio.Errorf(audio.ResultIllegalArgument, "synthesis input rejected: %s", apiErr.ErrorMessage())
		default:
			return audio.Errorf(audio.ResultUnavailable, "synthesis failed: %s", apiErr.ErrorMessage())
		}
	}
	return audio.Errorf(audio.ResultNoService, "synthesis transport failed: %v", err)
}

func defaultString(v string, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func (s *Source) resolveClient() (synthClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(s.cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	s.client = polly.NewFromConfig(awsCfg)
	return s.client, nil
}
