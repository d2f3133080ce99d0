// Package edgespeech adapts the Microsoft Edge read-aloud neural voices
// over their WebSocket protocol. The service is keyless; the handshake
// carries a clock-derived Sec-MS-GEC token instead of a credential.
package edgespeech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tts"
)

const (
	providerName = "edgespeech"

	defaultBaseURL = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	defaultToken   = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	defaultVersion = "1-131.0.2903.99"
	defaultOrigin  = "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"
	defaultAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	defaultVoice = "en-US-AvaMultilingualNeural"
)

// Client implements audio synthesis over the read-aloud WebSocket.
type Client struct {
	enabled bool
	voice   string
}

// NewClient creates a new Edge speech client.
func NewClient(cfg config.EdgeSpeechConfig) *Client {
	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoice
	}
	return &Client{enabled: cfg.Enabled, voice: voice}
}

func (c *Client) Name() string { return providerName }

// Configured reports the config toggle; the service needs no credential.
func (c *Client) Configured() bool { return c.enabled }

func (c *Client) GenerateAudio(ctx context.Context, req gen.AudioRequest) (*gen.AudioResult, error) {
	voice := req.Voice
	if voice == "" {
		voice = c.voice
	}
	text := tts.StripSpeakerLabels(req.Text)

	start := time.Now()
	conn, err := dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := sendConfig(conn); err != nil {
		return nil, err
	}

	requestID := strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := sendSSML(conn, voice, text, req.Speed, requestID); err != nil {
		return nil, err
	}

	var audio bytes.Buffer
	if err := consumeResponses(ctx, conn, &audio); err != nil {
		return nil, err
	}
	if audio.Len() == 0 {
		return nil, &gen.APIError{Provider: providerName, Message: "stream ended without audio"}
	}

	return &gen.AudioResult{
		Data:     audio.Bytes(),
		Format:   "mp3",
		Voice:    voice,
		Duration: tts.EstimateDuration(text, req.Speed),
		Provider: providerName,
		Elapsed:  time.Since(start),
	}, nil
}

func dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Origin", envOr("EDGE_SPEECH_ORIGIN", defaultOrigin))
	header.Set("User-Agent", envOr("EDGE_SPEECH_USER_AGENT", defaultAgent))
	header.Set("Pragma", "no-cache")
	header.Set("Cache-Control", "no-cache")
	header.Set("Accept-Language", "en-US,en;q=0.9")

	muid := strings.ReplaceAll(uuid.New().String(), "-", "")
	header.Set("Cookie", fmt.Sprintf("muid=%s", muid))

	token := envOr("EDGE_SPEECH_TRUSTED_CLIENT_TOKEN", defaultToken)
	u := fmt.Sprintf("%s?TrustedClientToken=%s&Sec-MS-GEC=%s&Sec-MS-GEC-Version=%s",
		envOr("EDGE_SPEECH_BASE_URL", defaultBaseURL),
		token,
		generateSecMSGec(token),
		envOr("EDGE_SPEECH_SEC_MS_GEC_VERSION", defaultVersion))

	var conn *websocket.Conn
	var dialErr error
	for i := 0; i < 3; i++ {
		var resp *http.Response
		conn, resp, dialErr = websocket.DefaultDialer.DialContext(ctx, u, header)
		if dialErr == nil {
			return conn, nil
		}
		if resp != nil {
			slog.Warn("Edge speech handshake failed", "status", resp.StatusCode)
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, &gen.APIError{Provider: providerName, StatusCode: resp.StatusCode, Message: "handshake rejected"}
			}
		}
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("websocket dial failed after retries: %w", dialErr)
}

// generateSecMSGec derives the handshake token: Windows file-time ticks
// floored to 5 minutes, concatenated with the client token and hashed.
func generateSecMSGec(trustedClientToken string) string {
	ticks := float64(time.Now().Unix()) + 11644473600
	ticks -= float64(int64(ticks) % 300)
	ticks *= 1e7

	hash := sha256.Sum256([]byte(fmt.Sprintf("%.0f%s", ticks, trustedClientToken)))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

func sendConfig(conn *websocket.Conn) error {
	configMsg := "Content-Type:application/json; charset=utf-8\r\nPath:speech.config\r\n\r\n{\"context\":{\"synthesis\":{\"audio\":{\"metadataoptions\":{\"sentenceBoundaryEnabled\":\"false\",\"wordBoundaryEnabled\":\"false\"},\"outputFormat\":\"audio-24khz-48kbitrate-mono-mp3\"}}}}"
	if err := conn.WriteMessage(websocket.TextMessage, []byte(configMsg)); err != nil {
		return fmt.Errorf("failed to send speech.config: %w", err)
	}
	return nil
}

func sendSSML(conn *websocket.Conn, voice, text string, speed float64, requestID string) error {
	ssml := buildSSML(voice, text, speed)
	msg := fmt.Sprintf("X-RequestId:%s\r\nContent-Type:application/ssml+xml\r\nPath:ssml\r\n\r\n%s", requestID, ssml)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send ssml: %w", err)
	}
	return nil
}

func buildSSML(voice, text string, speed float64) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	escaped := replacer.Replace(text)

	rate := int(math.Round((tts.ClampSpeed(speed) - 1.0) * 100))
	return fmt.Sprintf("<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>"+
		"<voice name='%s'><prosody rate='%+d%%'>%s</prosody></voice></speak>", voice, rate, escaped)
}

func consumeResponses(ctx context.Context, conn *websocket.Conn, audio *bytes.Buffer) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message failed: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if strings.Contains(string(data), "Path:turn.end") {
				return nil
			}
		case websocket.BinaryMessage:
			appendAudioPayload(data, audio)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// appendAudioPayload strips the length-prefixed frame header and keeps the
// audio bytes.
func appendAudioPayload(data []byte, audio *bytes.Buffer) {
	if len(data) < 2 {
		return
	}
	headerLength := int(uint16(data[0])<<8 | uint16(data[1]))
	if len(data) < 2+headerLength {
		return
	}
	audio.Write(data[2+headerLength:])
}

// Voices returns a list of high-quality neural voices.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "en-US-AvaMultilingualNeural", Name: "Ava (Multilingual)", Language: "en-US", IsNeural: true},
		{ID: "en-US-AndrewMultilingualNeural", Name: "Andrew (Multilingual)", Language: "en-US", IsNeural: true},
		{ID: "en-GB-SoniaNeural", Name: "Sonia (UK)", Language: "en-GB", IsNeural: true},
		{ID: "fr-FR-VivienneNeural", Name: "Vivienne (France)", Language: "fr-FR", IsNeural: true},
		{ID: "de-DE-SeraphinaNeural", Name: "Seraphina (Germany)", Language: "de-DE", IsNeural: true},
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
