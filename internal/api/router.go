// Package api exposes the HTTP surface: profile CRUD, voice note
// processing, network queries and outreach drafting.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/profile"
	"github.com/yanhann10/mingle/internal/voicenote"
)

// ProfileDirectory is the slice of profile.Manager the handlers need.
type ProfileDirectory interface {
	Create(d profile.Draft) (profile.Profile, error)
	Get(id string) (profile.Profile, error)
	List() ([]profile.Profile, error)
	Update(id string, p profile.Patch) (profile.Profile, error)
}

// RAGDispatcher schedules a background index push for a profile.
// Implementations must never block the caller.
type RAGDispatcher interface {
	Dispatch(p profile.Profile)
}

// VoicePipeline runs one staged upload through
// transcription, extraction, resolution and drafting.
type VoicePipeline interface {
	Run(ctx context.Context, up *voicenote.Upload) (*voicenote.Result, error)
}

// ContactRanker scores a single candidate against a network query.
type ContactRanker interface {
	RankContact(ctx context.Context, q aiserver.RankQuery, candidate aiserver.Contact) (aiserver.RankResult, error)
}

// OutreachDrafter writes an outreach message between two profiles.
type OutreachDrafter interface {
	DraftOutreach(ctx context.Context, req aiserver.OutreachRequest) (aiserver.OutreachDraft, error)
}

// Deps collects the collaborators the router needs.
type Deps struct {
	Profiles ProfileDirectory
	RAG      RAGDispatcher
	Ingest   *voicenote.Ingest
	Pipeline VoicePipeline
	Ranker   ContactRanker
	Drafter  OutreachDrafter
}

// NewRouter builds the chi router with all routes mounted.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", handleCreateProfile(deps))
			r.Get("/", handleListProfiles(deps))
			r.Get("/{id}", handleGetProfile(deps))
			r.Put("/{id}", handleUpdateProfile(deps))
		})
		r.Post("/voicenotes/process", handleProcessVoiceNote(deps))
		r.Post("/network/query", handleNetworkQuery(deps))
		r.Post("/outreach/draft", handleDraftOutreach(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
