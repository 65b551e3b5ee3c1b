// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/decidio/duel/internal/config"
	"github.com/decidio/duel/internal/game"
	"github.com/decidio/duel/internal/recommend"
	"github.com/decidio/duel/internal/testinfra"
)

// envelope mirrors APIResponse with the payload kept raw so each test
// decodes it into the view type it expects.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

// testServer is the routed API over an in-memory store. Rate limiting is
// disabled so tests can hammer endpoints without tripping rejections; the
// limiter itself is covered separately.
type testServer struct {
	router http.Handler
	store  *testinfra.MemStore
	rec    *recommend.Engine
}

func newTestServer(t *testing.T, catalogSize int) *testServer {
	t.Helper()

	ms := testinfra.NewMemStore()
	if catalogSize > 0 {
		ms.SeedProducts(testinfra.PenCatalog(catalogSize))
	}

	rec := recommend.New(recommend.Config{}, ms, zerolog.Nop())
	if err := rec.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	games := game.New(config.GameConfig{
		TotalRounds:        2,
		OnboardingPoolSize: 12,
		OnboardingPicks:    3,
		CandidateCount:     4,
	}, ms, rec, zerolog.Nop())

	cfg := &config.Config{}
	cfg.API.DefaultPageSize = 20
	cfg.API.MaxPageSize = 100

	handler := NewHandler(ms, rec, games, cfg, "test")
	mw := NewChiMiddlewareFromSecurity(nil, 1000, time.Minute, true)

	return &testServer{
		router: NewRouter(handler, mw).SetupChi(),
		store:  ms,
		rec:    rec,
	}
}

// do sends a request with an optional JSON body and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	return ts.doReader(t, method, path, reader)
}

// doRaw sends a verbatim body, for malformed-JSON cases do cannot produce.
func (ts *testServer) doRaw(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	return ts.doReader(t, method, path, strings.NewReader(body))
}

func (ts *testServer) doReader(t *testing.T, method, path string, body io.Reader) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal envelope: %v\nbody: %s", err, rr.Body.String())
		}
	}
	return rr.Code, env
}

// decodeData unmarshals the envelope payload into dst.
func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()

	if len(env.Data) == 0 {
		t.Fatalf("response has no data payload")
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data payload: %v\ndata: %s", err, env.Data)
	}
}

// wantAPIError asserts the status code and machine-readable error code.
func wantAPIError(t *testing.T, status int, env envelope, wantStatus int, wantCode string) {
	t.Helper()

	if status != wantStatus {
		t.Fatalf("status = %d, want %d", status, wantStatus)
	}
	if env.Success {
		t.Fatalf("Success = true, want false")
	}
	if env.Error == nil {
		t.Fatalf("Error = nil, want code %s", wantCode)
	}
	if env.Error.Code != wantCode {
		t.Errorf("Error.Code = %s, want %s", env.Error.Code, wantCode)
	}
}

// startGame creates a game over HTTP and returns its view.
func startGame(t *testing.T, ts *testServer, player string) game.GameView {
	t.Helper()

	status, env := ts.do(t, http.MethodPost, "/api/game/start", GameStartRequest{PlayerName: player})
	if status != http.StatusCreated {
		t.Fatalf("POST /api/game/start status = %d, want %d (error: %+v)", status, http.StatusCreated, env.Error)
	}

	var view game.GameView
	decodeData(t, env, &view)
	return view
}

// completeOnboarding fetches the pool and submits the first picks, moving
// the game to the ready state.
func completeOnboarding(t *testing.T, ts *testServer, gameID string, picks, rating int) {
	t.Helper()

	status, env := ts.do(t, http.MethodGet, "/api/game/"+gameID+"/onboarding", nil)
	if status != http.StatusOK {
		t.Fatalf("GET onboarding status = %d (error: %+v)", status, env.Error)
	}

	var pool game.OnboardingView
	decodeData(t, env, &pool)
	if len(pool.Products) < picks {
		t.Fatalf("onboarding pool has %d products, need %d", len(pool.Products), picks)
	}

	ids := make([]string, picks)
	for i := 0; i < picks; i++ {
		ids[i] = pool.Products[i].ID
	}

	status, env = ts.do(t, http.MethodPost, "/api/game/"+gameID+"/onboarding/submit", OnboardingSubmitRequest{
		SelectedProductIDs: ids,
		Rating:             rating,
	})
	if status != http.StatusOK {
		t.Fatalf("POST onboarding/submit status = %d (error: %+v)", status, env.Error)
	}
}

// playRound starts the next round and picks the first candidate.
func playRound(t *testing.T, ts *testServer, gameID string) game.RoundResult {
	t.Helper()

	status, env := ts.do(t, http.MethodPost, "/api/game/"+gameID+"/round/start", nil)
	if status != http.StatusOK {
		t.Fatalf("POST round/start status = %d (error: %+v)", status, env.Error)
	}

	var round game.RoundStart
	decodeData(t, env, &round)
	if len(round.Candidates) == 0 {
		t.Fatalf("round %d has no candidates", round.RoundNumber)
	}

	path := "/api/game/" + gameID + "/round/" + strconv.Itoa(round.RoundNumber) + "/pick"
	status, env = ts.do(t, http.MethodPost, path, RoundPickRequest{ProductID: round.Candidates[0].ID})
	if status != http.StatusOK {
		t.Fatalf("POST %s status = %d (error: %+v)", path, status, env.Error)
	}

	var result game.RoundResult
	decodeData(t, env, &result)
	return result
}
