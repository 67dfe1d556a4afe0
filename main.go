package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"reclamebot/internal/bot"
	"reclamebot/internal/config"
	"reclamebot/internal/responder"
	"reclamebot/internal/session"
	"reclamebot/internal/store"
	"reclamebot/internal/web"
)

const envFile = ".env"

func main() {
	log.Println("🚀 Starting ReclameBot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Invalid configuration: ", err)
	}
	if !cfg.HasCredentials() {
		log.Println("⚠️  Portal or OpenAI credentials missing; cycles will fail until they are configured")
	}
	dyn := config.NewDynamic(cfg)

	log.Println("📋 Opening complaint store...")
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("❌ Failed to open complaint store: ", err)
	}
	defer st.Close()

	gen := responder.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	// Each cycle builds a fresh session from the current settings, so browser
	// and credential changes apply on the next cycle without a restart.
	factory := func() bot.PortalSession {
		snap := dyn.Snapshot()
		sess := session.New(session.Options{
			BaseURL:           snap.PortalBaseURL,
			Email:             snap.Email,
			Password:          snap.Password,
			Headless:          snap.Headless,
			ExecPath:          browserPath(snap.Browser),
			NavigationTimeout: snap.NavigationTimeout,
			WaitTimeout:       snap.WaitTimeout,
			TypeDelay:         snap.TypeDelay,
		})
		return &retryingSession{
			Session: sess,
			retries: snap.MaxLoginRetries,
			delay:   snap.LoginRetryDelay,
		}
	}

	orch := bot.New(factory, st, gen, dyn.SystemPrompt, cfg.ItemDelay, bot.NewMonitor())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go bot.NewScheduler(orch, dyn.CheckInterval()).Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: web.NewServer(st, orch, gen, dyn, envFile, ctx).Router(),
	}
	go func() {
		log.Println("🌐 Dashboard listening on http://localhost:" + cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ HTTP server failed: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("⏹️  Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("⚠️  HTTP shutdown error:", err)
	}
	log.Println("✅ Goodbye")
}

// retryingSession wraps a portal session so transient login failures are
// retried before the cycle gives up.
type retryingSession struct {
	*session.Session
	retries int
	delay   time.Duration
}

func (r *retryingSession) Login() bool {
	for attempt := 1; attempt <= r.retries; attempt++ {
		log.Printf("🔐 Login attempt %d/%d...", attempt, r.retries)
		if r.Session.Login() {
			log.Println("✓ Login successful")
			return true
		}
		if attempt < r.retries {
			log.Printf("⏳ Retrying in %v...", r.delay)
			time.Sleep(r.delay)
		}
	}
	log.Printf("❌ Login failed after %d attempts", r.retries)
	return false
}

// browserPath resolves a non-default browser binary. Chrome is found by the
// driver itself; chromium installs often need an explicit path.
func browserPath(browser string) string {
	if browser != "chromium" {
		return ""
	}
	for _, name := range []string{"chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
