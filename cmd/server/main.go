package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lumikid/tutor-backend/internal/ai"
	"github.com/lumikid/tutor-backend/internal/config"
	"github.com/lumikid/tutor-backend/internal/httpapi"
	"github.com/lumikid/tutor-backend/internal/observability"
	"github.com/lumikid/tutor-backend/internal/session"
	"github.com/lumikid/tutor-backend/internal/tutor"
)

func main() {
	cfg := config.Load()

	// Provider registry (route by AI_PROVIDER)
	reg := ai.NewRegistry()
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m,
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})
	reg.Register("openai", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenAIModel
		}
		return ai.NewOpenAIProvider(cfg.OpenAIAPIKey, m), nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := reg.Get(ctx, cfg.AIProvider, "")
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	store := session.NewStore()
	observability.RegisterActiveSessions(func() float64 { return float64(store.Len()) })

	svc, err := tutor.NewService(store, provider, cfg.InteractionLimit, cfg.PromptWindowSize,
		tutor.WithProviderTimeout(cfg.ProviderTimeout))
	if err != nil {
		log.Fatalf("service: %v", err)
	}

	sweeper := session.NewSweeper(store, cfg.SessionTTL, cfg.SweepInterval)
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.NewRouter(store, svc),
	}

	go func() {
		log.Printf("server started addr=%s provider=%s", srv.Addr, cfg.AIProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
