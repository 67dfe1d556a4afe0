// Package web serves the dashboard and the JSON API on top of the store and
// the orchestrator. It never drives the browser itself; the only way it
// touches the portal is by triggering a processing cycle.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"reclamebot/internal/bot"
	"reclamebot/internal/config"
	"reclamebot/internal/responder"
	"reclamebot/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ComplaintStore is the subset of the store the dashboard reads and writes.
type ComplaintStore interface {
	Save(complaintID, customerName, complaintText, responseText, status string) bool
	ListRecent(limit int) []store.Record
	Statistics() store.Stats
	ExportJSON(path string, limit int) bool
}

// CycleRunner triggers and observes processing cycles. Satisfied by
// *bot.Orchestrator.
type CycleRunner interface {
	RunCycle(ctx context.Context) bool
	Running() bool
	Monitor() *bot.Monitor
}

// Server holds the handlers' shared dependencies.
type Server struct {
	store  ComplaintStore
	runner CycleRunner
	gen    responder.Generator
	cfg    *config.Dynamic

	// envPath is where edited settings are persisted; empty disables
	// persistence (tests).
	envPath string

	// runCtx outlives individual requests so a manually triggered cycle is
	// not cancelled when the HTTP request finishes.
	runCtx context.Context
}

func NewServer(st ComplaintStore, runner CycleRunner, gen responder.Generator,
	cfg *config.Dynamic, envPath string, runCtx context.Context) *Server {
	return &Server{
		store:   st,
		runner:  runner,
		gen:     gen,
		cfg:     cfg,
		envPath: envPath,
		runCtx:  runCtx,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/health", s.handleHealth)
	r.Get("/stats.png", s.handleStatsImage)

	r.Get("/api/stats", s.handleStats)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/complaints", s.handleComplaints)

	r.Post("/run", s.handleRun)
	r.Post("/export", s.handleExport)

	r.Get("/test", s.handleTestPage)
	r.Post("/test_response", s.handleTestResponse)
	r.Post("/save_test", s.handleSaveTest)

	r.Get("/config", s.handleConfigPage)
	r.Post("/save_config", s.handleSaveConfig)
	r.Post("/save_prompt", s.handleSavePrompt)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("⚠️  Failed to encode response:", err)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Stats  store.Stats
		Status bot.Status
		Recent []store.Record
	}{
		Stats:  s.store.Statistics(),
		Status: s.runner.Monitor().Snapshot(s.runner.Running()),
		Recent: s.store.ListRecent(20),
	}
	if err := templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		log.Println("⚠️  Failed to render dashboard:", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"bot":    s.runner.Monitor().Snapshot(s.runner.Running()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Statistics())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.runner.Monitor().Snapshot(s.runner.Running()))
}

func (s *Server) handleComplaints(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.store.ListRecent(limit))
}

// handleRun starts a processing cycle in the background. Overlap protection
// lives in the orchestrator; the Running check here only improves the message.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runner.Running() {
		writeJSON(w, http.StatusConflict, map[string]string{
			"message": "A processing cycle is already running",
		})
		return
	}
	go s.runner.RunCycle(s.runCtx)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Processing cycle started",
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.cfg.Snapshot()
	if !s.store.ExportJSON(snap.ExportPath, snap.ExportLimit) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "export failed",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Complaints exported",
		"path":    snap.ExportPath,
	})
}

func (s *Server) handleStatsImage(w http.ResponseWriter, r *http.Request) {
	img, err := RenderStatsCard(s.store.Statistics(), s.store.ListRecent(8))
	if err != nil {
		log.Println("⚠️  Failed to render stats image:", err)
		http.Error(w, "failed to render image", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}

func (s *Server) handleTestPage(w http.ResponseWriter, r *http.Request) {
	if err := templates.ExecuteTemplate(w, "test.html", nil); err != nil {
		log.Println("⚠️  Failed to render test page:", err)
	}
}

// handleTestResponse generates a reply for a sample complaint using the
// current prompt, without going near the portal.
func (s *Server) handleTestResponse(w http.ResponseWriter, r *http.Request) {
	complaintText := r.FormValue("complaint_text")
	if complaintText == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "complaint_text is required"})
		return
	}
	response := s.gen.Generate(r.Context(), complaintText, s.cfg.SystemPrompt())
	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

// handleSaveTest persists a generated test reply under a synthetic TEST- id
// so manual experiments are visible in the history and the statistics.
func (s *Server) handleSaveTest(w http.ResponseWriter, r *http.Request) {
	complaintText := r.FormValue("complaint_text")
	responseText := r.FormValue("response_text")
	if complaintText == "" || responseText == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "complaint_text and response_text are required",
		})
		return
	}
	customerName := r.FormValue("customer_name")
	if customerName == "" {
		customerName = "Test customer"
	}

	id := "TEST-" + uuid.NewString()
	if !s.store.Save(id, customerName, complaintText, responseText, store.StatusCompleted) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save test record"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "Test record saved",
		"complaint_id": id,
	})
}

type configPageData struct {
	Config      config.Config
	MinInterval int
	MaxInterval int
	Saved       bool
	Error       string
}

func (s *Server) renderConfig(w http.ResponseWriter, data configPageData) {
	data.Config = s.cfg.Snapshot()
	data.MinInterval = config.MinCheckInterval
	data.MaxInterval = config.MaxCheckInterval
	// Credentials never reach the page.
	data.Config.Password = ""
	data.Config.OpenAIAPIKey = ""
	if err := templates.ExecuteTemplate(w, "config.html", data); err != nil {
		log.Println("⚠️  Failed to render config page:", err)
	}
}

func (s *Server) handleConfigPage(w http.ResponseWriter, r *http.Request) {
	s.renderConfig(w, configPageData{Saved: r.URL.Query().Get("saved") == "1"})
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	interval, err := strconv.Atoi(r.FormValue("check_interval"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.renderConfig(w, configPageData{Error: "check interval must be a number"})
		return
	}
	browser := r.FormValue("browser")
	headless := r.FormValue("headless") != "false"

	if err := s.cfg.UpdateSettings(interval, browser, headless); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.renderConfig(w, configPageData{Error: err.Error()})
		return
	}
	s.persistConfig()
	http.Redirect(w, r, "/config?saved=1", http.StatusSeeOther)
}

func (s *Server) handleSavePrompt(w http.ResponseWriter, r *http.Request) {
	s.cfg.SetSystemPrompt(r.FormValue("system_prompt"))
	s.persistConfig()
	http.Redirect(w, r, "/config?saved=1", http.StatusSeeOther)
}

func (s *Server) persistConfig() {
	if s.envPath == "" {
		return
	}
	if err := s.cfg.Persist(s.envPath); err != nil {
		log.Println("⚠️  Failed to persist settings:", err)
	}
}
