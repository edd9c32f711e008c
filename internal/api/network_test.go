package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/profile"
)

type networkResponse struct {
	Matches []struct {
		Profile     profile.Profile `json:"profile"`
		MatchScore  float64         `json:"match_score"`
		MatchReason string          `json:"match_reason"`
		Source      string          `json:"source"`
	} `json:"matches"`
}

func TestNetworkQueryRanksAllProfiles(t *testing.T) {
	env := newTestEnv(t)
	createProfile(t, env, `{"name": "Maya Patel", "skills": ["design"]}`)
	createProfile(t, env, `{"name": "Sam Okafor", "skills": ["go"]}`)
	createProfile(t, env, `{"name": "Ines Duarte", "skills": ["sales"]}`)

	scores := map[string]float64{
		"Maya Patel":  0.4,
		"Sam Okafor":  0.9,
		"Ines Duarte": 0.7,
	}
	env.ranker.rank = func(c aiserver.Contact) (aiserver.RankResult, error) {
		return aiserver.RankResult{
			ContactID:   c.ID,
			MatchScore:  scores[c.Name],
			MatchReason: "stub",
			Source:      "cloud",
		}, nil
	}

	rec := env.do(t, http.MethodPost, "/api/network/query", `{"looking_for": "a backend engineer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp networkResponse
	decodeBody(t, rec, &resp)
	if len(resp.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(resp.Matches))
	}
	wantOrder := []string{"Sam Okafor", "Ines Duarte", "Maya Patel"}
	for i, want := range wantOrder {
		if got := resp.Matches[i].Profile.Name; got != want {
			t.Errorf("match %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestNetworkQueryDropsFailedCandidates(t *testing.T) {
	env := newTestEnv(t)
	createProfile(t, env, `{"name": "Maya Patel"}`)
	createProfile(t, env, `{"name": "Sam Okafor"}`)

	env.ranker.rank = func(c aiserver.Contact) (aiserver.RankResult, error) {
		if c.Name == "Sam Okafor" {
			return aiserver.RankResult{}, &aiserver.UpstreamError{Op: "rank-contact", Err: errors.New("boom")}
		}
		return aiserver.RankResult{ContactID: c.ID, MatchScore: 0.5, Source: "cloud"}, nil
	}

	rec := env.do(t, http.MethodPost, "/api/network/query", `{"domain": "fintech"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp networkResponse
	decodeBody(t, rec, &resp)
	if len(resp.Matches) != 1 {
		t.Fatalf("expected failed candidate to be dropped, got %d matches", len(resp.Matches))
	}
	if resp.Matches[0].Profile.Name != "Maya Patel" {
		t.Errorf("unexpected surviving match: %+v", resp.Matches[0])
	}
}

func TestNetworkQueryRequiresCriteria(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/network/query", `{"urgency": "high"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	errorBody(t, rec)
}

func TestNetworkQueryEmptyNetwork(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/network/query", `{"looking_for": "anyone"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp networkResponse
	decodeBody(t, rec, &resp)
	if len(resp.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(resp.Matches))
	}
}
