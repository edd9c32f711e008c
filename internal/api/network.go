package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/profile"
)

type networkQueryRequest struct {
	LookingFor string `json:"looking_for"`
	Domain     string `json:"domain"`
	HelpType   string `json:"help_type"`
	Urgency    string `json:"urgency"`
}

type networkMatch struct {
	Profile       profile.Profile `json:"profile"`
	MatchScore    float64         `json:"match_score"`
	MatchReason   string          `json:"match_reason"`
	OutreachAngle string          `json:"outreach_angle,omitempty"`
	Source        string          `json:"source"`
}

// handleNetworkQuery fans the query out over every stored profile and
// returns the successfully ranked ones ordered by score. A candidate
// whose ranking call fails is logged and dropped rather than failing
// the whole query.
func handleNetworkQuery(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

		var req networkQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body: %s", err)
			return
		}
		if strings.TrimSpace(req.LookingFor) == "" && strings.TrimSpace(req.Domain) == "" {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "query needs at least looking_for or domain")
			return
		}

		profiles, err := deps.Profiles.List()
		if err != nil {
			httpError(w, http.StatusInternalServerError, codeAPIError, "list profiles: %s", err)
			return
		}

		query := aiserver.RankQuery{
			LookingFor: req.LookingFor,
			Domain:     req.Domain,
			HelpType:   req.HelpType,
			Urgency:    req.Urgency,
		}

		var (
			mu      sync.Mutex
			matches []networkMatch
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.SetLimit(4)
		for _, p := range profiles {
			g.Go(func() error {
				res, err := deps.Ranker.RankContact(ctx, query, contactFromProfile(p))
				if err != nil {
					slog.Warn("rank contact failed, dropping candidate",
						"profile_id", p.ID, "name", p.Name, "error", err)
					return nil
				}
				mu.Lock()
				matches = append(matches, networkMatch{
					Profile:       p,
					MatchScore:    res.MatchScore,
					MatchReason:   res.MatchReason,
					OutreachAngle: res.OutreachAngle,
					Source:        res.Source,
				})
				mu.Unlock()
				return nil
			})
		}
		// Ranking goroutines never return an error; failures are dropped above.
		_ = g.Wait()

		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].MatchScore > matches[j].MatchScore
		})
		if matches == nil {
			matches = []networkMatch{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
	}
}

func contactFromProfile(p profile.Profile) aiserver.Contact {
	return aiserver.Contact{
		ID:          p.ID,
		Name:        p.Name,
		Role:        p.Role,
		Company:     p.Company,
		Bio:         p.Bio,
		Skills:      p.Skills,
		LookingFor:  p.LookingFor,
		CanHelpWith: p.CanHelpWith,
		Domains:     p.Domains,
	}
}
