package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanhann10/mingle/internal/profile"
	"github.com/yanhann10/mingle/internal/storage"
)

const maxJSONBody = 1 << 20

func handleCreateProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

		var draft profile.Draft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body: %s", err)
			return
		}

		created, err := deps.Profiles.Create(draft)
		if err != nil {
			var verr *profile.ValidationError
			if errors.As(err, &verr) {
				httpError(w, http.StatusBadRequest, codeInvalidRequest, "%s", verr)
				return
			}
			httpError(w, http.StatusInternalServerError, codeAPIError, "create profile: %s", err)
			return
		}

		// Index push happens off the request path; a sync failure
		// never changes this response.
		deps.RAG.Dispatch(created)

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":      created.ID,
			"profile": created,
		})
	}
}

func handleListProfiles(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := deps.Profiles.List()
		if err != nil {
			httpError(w, http.StatusInternalServerError, codeAPIError, "list profiles: %s", err)
			return
		}
		if profiles == nil {
			profiles = []profile.Profile{}
		}
		writeJSON(w, http.StatusOK, profiles)
	}
}

func handleGetProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := deps.Profiles.Get(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, codeNotFound, "profile %s not found", id)
				return
			}
			httpError(w, http.StatusInternalServerError, codeAPIError, "get profile: %s", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleUpdateProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

		var patch profile.Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body: %s", err)
			return
		}

		updated, err := deps.Profiles.Update(id, patch)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				httpError(w, http.StatusNotFound, codeNotFound, "profile %s not found", id)
			default:
				var verr *profile.ValidationError
				if errors.As(err, &verr) {
					httpError(w, http.StatusBadRequest, codeInvalidRequest, "%s", verr)
					return
				}
				httpError(w, http.StatusInternalServerError, codeAPIError, "update profile: %s", err)
			}
			return
		}

		deps.RAG.Dispatch(updated)

		writeJSON(w, http.StatusOK, updated)
	}
}
