// Command sumanize-server wires the engine, the summarization service, and
// the JSON API into one HTTP process. Configuration comes from the
// environment; with no REDIS_ADDR an embedded miniredis keeps local
// development dependency-free.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sumanize/sumanize"
	"github.com/sumanize/sumanize/handler"
	"github.com/sumanize/sumanize/metrics/export/prometheus"
	"github.com/sumanize/sumanize/summarize"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := sumanize.DefaultConfig()
	cfg.Production = os.Getenv("SUMANIZE_ENV") == "production"
	cfg.Metrics.EnableLatencyHistograms = true

	secret := os.Getenv("SUMANIZE_JWT_SECRET")
	if secret == "" {
		if cfg.Production {
			return errors.New("SUMANIZE_JWT_SECRET required in production")
		}
		secret = "dev-only-secret-not-for-production"
		log.Print("SUMANIZE_JWT_SECRET not set, using development secret")
	}
	cfg.JWT.Secret = []byte(secret)

	if v := os.Getenv("SUMANIZE_DAILY_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SUMANIZE_DAILY_LIMIT: %w", err)
		}
		cfg.Usage.DailyLimit = limit
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start embedded redis: %w", err)
		}
		defer mr.Close()
		redisAddr = mr.Addr()
		log.Printf("REDIS_ADDR not set, using embedded redis at %s", redisAddr)
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	provider, err := providerFromEnv(cfg.Production)
	if err != nil {
		return err
	}

	engine, err := sumanize.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityProvider(provider).
		WithAuditSink(sumanize.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	completer, err := completerFromEnv()
	if err != nil {
		return err
	}

	service, err := summarize.NewService(summarize.ServiceConfig{}, completer, summarize.NewMemoryStore(), engine)
	if err != nil {
		return fmt.Errorf("build summarize service: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewExporter(engine).Handler())
	mux.Handle("/", handler.NewRouter(engine, service))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// envProvider is a static identity provider configured from
// SUMANIZE_USERS="email:password[,email:password...]". It exists so the
// binary runs standalone; deployments plug a real user store behind
// [sumanize.IdentityProvider].
type envProvider struct {
	passwords map[string]string
}

func providerFromEnv(production bool) (sumanize.IdentityProvider, error) {
	raw := os.Getenv("SUMANIZE_USERS")
	if raw == "" {
		if production {
			return nil, errors.New("SUMANIZE_USERS required in production")
		}
		raw = "alice@example.com:password"
		log.Print("SUMANIZE_USERS not set, using development account alice@example.com")
	}

	passwords := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		email, password, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || email == "" || password == "" {
			return nil, fmt.Errorf("SUMANIZE_USERS: malformed entry %q", pair)
		}
		passwords[email] = password
	}
	return envProvider{passwords: passwords}, nil
}

func (p envProvider) Authenticate(_ context.Context, email, password string) (sumanize.Identity, error) {
	stored, ok := p.passwords[email]
	if !ok || stored != password {
		return sumanize.Identity{}, errors.New("unknown user or wrong password")
	}
	return sumanize.Identity{ID: "user:" + email, Email: email}, nil
}

// devCompleter answers locally when no AI endpoint is configured, so the
// whole flow is exercisable offline.
type devCompleter struct{}

func (devCompleter) Complete(_ context.Context, prompt string) (string, error) {
	return fmt.Sprintf("# Summary (development stub)\n\n- prompt length: %d bytes\n", len(prompt)), nil
}

func completerFromEnv() (summarize.Completer, error) {
	endpoint := os.Getenv("SUMANIZE_AI_ENDPOINT")
	if endpoint == "" {
		log.Print("SUMANIZE_AI_ENDPOINT not set, using development stub completer")
		return devCompleter{}, nil
	}
	return summarize.NewHTTPCompleter(summarize.CompleterConfig{
		Endpoint: endpoint,
		APIKey:   os.Getenv("SUMANIZE_AI_API_KEY"),
		Model:    os.Getenv("SUMANIZE_AI_MODEL"),
		Timeout:  60 * time.Second,
	})
}
