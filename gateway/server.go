package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fanforge/gateway/middleware"
	"fanforge/native/commitment"
	"fanforge/native/fees"
	"fanforge/native/guild"
	"fanforge/native/payout"
	"fanforge/native/pitch"
	"fanforge/native/registry"
	"fanforge/native/score"
)

// Server is the thin HTTP surface over the native engines. It parses
// requests, delegates every decision to the engines, and maps typed failures
// to HTTP statuses; no monetization rule lives here.
type Server struct {
	logger      *slog.Logger
	registry    *registry.Store
	commitments *commitment.Engine
	guilds      *guild.Engine
	pitches     *pitch.Engine
	payouts     *payout.Engine
}

// Config carries the collaborators required to build a Server.
type Config struct {
	Logger      *slog.Logger
	Registry    *registry.Store
	Commitments *commitment.Engine
	Guilds      *guild.Engine
	Pitches     *pitch.Engine
	Payouts     *payout.Engine
}

// NewServer constructs the gateway server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:      logger,
		registry:    cfg.Registry,
		commitments: cfg.Commitments,
		guilds:      cfg.Guilds,
		pitches:     cfg.Pitches,
		payouts:     cfg.Payouts,
	}
}

// Router assembles the chi router with rate limiting and instrumentation.
func (s *Server) Router(obs *middleware.Observability, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	if obs != nil {
		r.Handle("/metrics", obs.MetricsHandler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(v1 chi.Router) {
		if obs != nil {
			v1.Use(obs.Middleware("v1"))
		}
		if limiter != nil {
			v1.Use(limiter.Middleware("v1"))
		}
		v1.Post("/fees/quote", s.handleFeeQuote)
		v1.Post("/score", s.handleScore)
		v1.Post("/commitments", s.handleCommitmentCreate)
		v1.Get("/commitments/{id}", s.handleCommitmentGet)
		v1.Post("/commitments/{id}/settle", s.handleCommitmentSettle)
		v1.Post("/commitments/{id}/withdraw-early", s.handleCommitmentWithdrawEarly)
		v1.Post("/guilds", s.handleGuildCreate)
		v1.Get("/guilds/{id}", s.handleGuildGet)
		v1.Post("/guilds/{id}/members", s.handleGuildAddMember)
		v1.Post("/guilds/{id}/contributions", s.handleGuildContribute)
		v1.Post("/pitches", s.handlePitchCreate)
		v1.Get("/pitches/{id}", s.handlePitchGet)
		v1.Post("/pitches/{id}/contributions", s.handlePitchContribute)
		v1.Post("/pitches/{id}/close", s.handlePitchClose)
		v1.Post("/pitches/{id}/delivery", s.handlePitchDelivery)
		v1.Post("/payouts", s.handlePayoutRequest)
		v1.Get("/payouts/{id}", s.handlePayoutGet)
		v1.Post("/payouts/{id}/approve", s.handlePayoutApprove)
	})
	return r
}

func (s *Server) currentParams() *registry.Params {
	if s.registry == nil {
		return nil
	}
	return s.registry.Current()
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func parseAmount(raw string) (*big.Int, bool) {
	value, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	return value, ok
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error string `json:"error"`
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: message})
}

// writeEngineError maps typed engine failures onto HTTP statuses. Conflicts
// cover state-machine violations and exhausted windows; configuration
// integrity failures surface as 500s after an error-severity log.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, guild.ErrGuildMisconfigured):
		s.logger.Error("configuration integrity violation", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	case errors.Is(err, score.ErrWeightsNotNormalized):
		s.logger.Error("configuration integrity violation", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	case errors.Is(err, commitment.ErrNotFound),
		errors.Is(err, guild.ErrNotFound),
		errors.Is(err, pitch.ErrNotFound),
		errors.Is(err, payout.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, commitment.ErrAlreadySettled),
		errors.Is(err, commitment.ErrNotYetMatured),
		errors.Is(err, commitment.ErrNotActive),
		errors.Is(err, pitch.ErrWindowStillOpen),
		errors.Is(err, pitch.ErrPitchNotFunding),
		errors.Is(err, pitch.ErrNotSucceeded),
		errors.Is(err, guild.ErrGuildFull),
		errors.Is(err, guild.ErrAlreadyMember),
		errors.Is(err, payout.ErrCooldownActive),
		errors.Is(err, payout.ErrDailyCountExceeded),
		errors.Is(err, payout.ErrDailyAmountExceeded),
		errors.Is(err, payout.ErrNotPending):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, fees.ErrInvalidAmount),
		errors.Is(err, fees.ErrUnknownTransactionType),
		errors.Is(err, commitment.ErrInvalidCommitmentAmount),
		errors.Is(err, commitment.ErrInvalidCommitmentDuration),
		errors.Is(err, commitment.ErrInsufficientFunds),
		errors.Is(err, guild.ErrScoreTooLow),
		errors.Is(err, guild.ErrInvalidContribution),
		errors.Is(err, guild.ErrInsufficientFunds),
		errors.Is(err, pitch.ErrInvalidGoal),
		errors.Is(err, pitch.ErrInvalidDuration),
		errors.Is(err, pitch.ErrTooManyRewardTiers),
		errors.Is(err, pitch.ErrInvalidAmount),
		errors.Is(err, pitch.ErrInsufficientFunds),
		errors.Is(err, payout.ErrInvalidAmount),
		errors.Is(err, payout.ErrBelowMinimumPayout),
		errors.Is(err, payout.ErrInsufficientFunds):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		s.logger.Error("engine failure", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
