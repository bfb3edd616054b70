package analytics

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

// PosthogEmitter reports events to PostHog, tagged with a stable anonymous
// install id persisted under ~/.prreview/.env and basic platform metadata.
type PosthogEmitter struct {
	publicKey  string
	appVersion string
	distinctID string
}

// NewPosthogEmitter loads (creating if absent) the anonymous install id and
// returns an emitter bound to publicKey. Pass an empty publicKey to get a
// safe no-op emitter (Emit becomes a no-op rather than erroring).
func NewPosthogEmitter(publicKey, appVersion string) *PosthogEmitter {
	return &PosthogEmitter{
		publicKey:  publicKey,
		appVersion: appVersion,
		distinctID: loadOrCreateInstallID(),
	}
}

func loadOrCreateInstallID() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "unknown"
	}
	envFile := filepath.Join(home, ".prreview", ".env")

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(envFile), 0o755); err == nil {
			_ = godotenv.Write(map[string]string{"uuid": uuid.New().String()}, envFile)
		}
	}
	_ = godotenv.Load(envFile)

	if id := os.Getenv("uuid"); id != "" {
		return id
	}
	return uuid.New().String()
}

// Emit sends event with properties, merged with automatic platform
// metadata (os/arch/go version/app version). Failures are swallowed:
// telemetry must never fail a review.
func (p *PosthogEmitter) Emit(event string, properties map[string]any) {
	if p.publicKey == "" {
		return
	}

	disableGeoIP := false
	client, err := posthog.NewWithConfig(p.publicKey, posthog.Config{
		Endpoint:     "https://us.i.posthog.com",
		DisableGeoIP: &disableGeoIP,
	})
	if err != nil {
		return
	}
	defer client.Close()

	props := posthog.NewProperties()
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("go_version", runtime.Version())
	if p.appVersion != "" {
		props.Set("prreview_version", p.appVersion)
	}
	for k, v := range properties {
		props.Set(k, v)
	}

	_ = client.Enqueue(posthog.Capture{
		DistinctId: p.distinctID,
		Event:      event,
		Properties: props,
	})
}

// Close is a no-op: each Emit call owns its own short-lived client.
func (p *PosthogEmitter) Close() {}
