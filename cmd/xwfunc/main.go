package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/go-playground/validator/v10"

	"github.com/crosswarped/xwsolver/difficulty"
	"github.com/crosswarped/xwsolver/hydrate"
	"github.com/crosswarped/xwsolver/pattern"
	"github.com/crosswarped/xwsolver/pool"
	"github.com/crosswarped/xwsolver/provider"
	"github.com/crosswarped/xwsolver/solver"
	"github.com/crosswarped/xwsolver/xwio"
)

var (
	validate = validator.New()
	log      = slog.New(slog.NewJSONHandler(os.Stderr, nil))
)

// GenerateGridRequest is the HTTP request body for /generate-grid.
type GenerateGridRequest struct {
	Width     int `json:"width" validate:"gte=3"`
	MinLength int `json:"minLength" validate:"gte=2"`
	Level     int `json:"level" validate:"gte=1,lte=7"`
}

// GenerateGridResponse mirrors the solver's {ok, grid, assignments, reason,
// details, stats} envelope over the wire.
type GenerateGridResponse struct {
	OK          bool              `json:"ok"`
	Grid        []string          `json:"grid,omitempty"`
	Assignments []xwio.Assignment `json:"assignments,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Details     map[string]any    `json:"details,omitempty"`
	Stats       solver.RunStats   `json:"stats"`
}

const defaultMaxWordLength = 21

func execute(ctx context.Context, req GenerateGridRequest, poolPath, hydrateEndpoint string) (GenerateGridResponse, error) {
	if err := validate.Struct(req); err != nil {
		return GenerateGridResponse{}, fmt.Errorf("invalid request: %w", err)
	}

	store := pool.NewStore(poolPath)
	p, err := store.Load()
	if err != nil {
		return GenerateGridResponse{}, fmt.Errorf("load pool: %w", err)
	}

	cfg := difficulty.Base
	deadline, hasDeadline := ctx.Deadline()
	timeout := time.Minute
	if hasDeadline {
		timeout = time.Until(deadline) - 2*time.Second
	}
	cfg.TimeoutMs = int(timeout.Milliseconds())

	seed := uint64(time.Now().UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	idx := pattern.Build(p)

	var hydrator *hydrate.Hydrator
	if hydrateEndpoint != "" {
		client := provider.NewOnelookClient(hydrateEndpoint)
		hydrator, err = hydrate.New(client, store, idx, defaultMaxWordLength, cfg.OnelookMax, 0, log)
		if err != nil {
			return GenerateGridResponse{}, fmt.Errorf("build hydrator: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := solver.Plan(ctx, req.Width, req.MinLength, idx, cfg, rng, solver.Options{RNG: rng, Logger: log, Hydrator: hydrator})
	if err != nil {
		return GenerateGridResponse{}, err
	}
	resp := GenerateGridResponse{OK: res.OK, Reason: string(res.Reason), Details: res.Details, Stats: res.Stats}
	if res.OK {
		resp.Grid = xwio.EncodeGrid(res.Grid, xwio.DefaultChars)
		resp.Assignments = xwio.EncodeAssignments(res.Assignments)
	}
	return resp, nil
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Content-Type", "application/json")
}

func generateGrid(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		fmt.Fprintf(w, `{"ok": false, "reason": "method %s not allowed"}`, r.Method)
		return
	}

	var req GenerateGridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GenerateGridResponse{OK: false, Reason: fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	poolPath := os.Getenv("POOL_PATH")
	if poolPath == "" {
		poolPath = "pool.json"
	}
	hydrateEndpoint := os.Getenv("HYDRATE_ENDPOINT")

	resp, err := execute(r.Context(), req, poolPath, hydrateEndpoint)
	if err != nil {
		log.Error("execute failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GenerateGridResponse{OK: false, Reason: err.Error()})
		return
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("marshal response failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"ok": false, "reason": "internal server error"}`)
	}
}

func main() {
	funcframework.RegisterHTTPFunction("/generate-grid", generateGrid)

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	hostname := ""
	if os.Getenv("LOCAL_ONLY") == "true" {
		hostname = "127.0.0.1"
	}
	if err := funcframework.StartHostPort(hostname, port); err != nil {
		log.Error("funcframework.StartHostPort failed", "error", err)
		os.Exit(1)
	}
}
