// Package api provides the HTTP handlers gluing the presentation layer to
// the trading core: trade execution, portfolio and leaderboard reads, trade
// history queries, and the administrator surface (news shocks, rounds).
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/krishgupta2521/FIC--sub000/internal/history"
	"github.com/krishgupta2521/FIC--sub000/internal/ledger"
	"github.com/krishgupta2521/FIC--sub000/internal/metrics"
	"github.com/krishgupta2521/FIC--sub000/internal/model"
	"github.com/krishgupta2521/FIC--sub000/internal/rank"
	"github.com/krishgupta2521/FIC--sub000/internal/round"
	"github.com/krishgupta2521/FIC--sub000/internal/shock"
	"github.com/krishgupta2521/FIC--sub000/internal/store"
)

// Service wires the core components behind HTTP handlers.
type Service struct {
	store    store.Store
	ledger   *ledger.Ledger
	shocks   *shock.Engine
	recorder *history.Recorder
	rounds   *round.Controller
	wsHub    *WSHub // optional, nil disables broadcasts
}

// NewService creates the API service. Pass nil for hub if WebSocket
// broadcasting is not needed.
func NewService(st store.Store, ldg *ledger.Ledger, sh *shock.Engine, rec *history.Recorder, rc *round.Controller, hub *WSHub) *Service {
	return &Service{
		store:    st,
		ledger:   ldg,
		shocks:   sh,
		recorder: rec,
		rounds:   rc,
		wsHub:    hub,
	}
}

// Routes mounts all handlers on a chi router.
func (s *Service) Routes(r chi.Router) {
	if s.wsHub != nil {
		r.Get("/ws", s.wsHub.HandleWS)
	}

	r.Get("/instruments", s.ListInstruments)
	r.Get("/instruments/{symbol}", s.GetInstrument)

	r.Post("/trade", s.ExecuteTrade)
	r.Get("/portfolio/{accountID}", s.GetPortfolio)
	r.Get("/leaderboard", s.GetLeaderboard)
	r.Get("/accounts/{accountID}/trades", s.ListAccountTrades)

	r.Get("/round", s.GetRound)
	r.Get("/admin/trades", s.ListAllTrades)
	r.Post("/admin/news", s.PublishNews)
	r.Post("/admin/round/start", s.StartRound)
	r.Post("/admin/round/freeze", s.FreezeRound)
	r.Post("/admin/round/resume", s.ResumeRound)
}

// --- Request types ---

// TradeRequest is the JSON body for POST /trade. Quantity accepts any JSON
// number; the ledger truncates it to whole shares.
type TradeRequest struct {
	AccountID   string          `json:"account_id"`
	DisplayName string          `json:"display_name"`
	Symbol      string          `json:"symbol"`
	Side        string          `json:"side"` // "BUY" or "SELL"
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewsRequest is the JSON body for POST /admin/news.
type NewsRequest struct {
	Text     string `json:"text"`
	Severity string `json:"severity"` // "mild", "moderate" or "severe"
}

// StartRoundRequest is the JSON body for POST /admin/round/start.
type StartRoundRequest struct {
	DurationSeconds int `json:"duration_seconds"` // 0 → no timer
}

// --- Market data ---

// ListInstruments handles GET /api/v1/instruments
func (s *Service) ListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := s.store.ListInstruments(r.Context())
	if err != nil {
		writeError(w, "failed to list instruments", http.StatusInternalServerError)
		return
	}
	if instruments == nil {
		instruments = []model.Instrument{}
	}
	writeJSON(w, http.StatusOK, instruments)
}

// GetInstrument handles GET /api/v1/instruments/{symbol}
func (s *Service) GetInstrument(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	inst, err := s.store.GetInstrument(r.Context(), symbol)
	if err != nil {
		writeError(w, "instrument not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

// --- Trading ---

// ExecuteTrade handles POST /api/v1/trade
func (s *Service) ExecuteTrade(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.AccountID == "" {
		writeError(w, "account_id is required", http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		writeError(w, "symbol is required", http.StatusBadRequest)
		return
	}
	if req.Side != model.SideBuy && req.Side != model.SideSell {
		writeError(w, "side must be BUY or SELL", http.StatusBadRequest)
		return
	}

	// The round state is snapshotted here and injected into the trade
	// request; the ledger never reads it again mid-transaction.
	state := s.rounds.Snapshot()

	start := time.Now()
	conf, err := s.ledger.ApplyTrade(r.Context(), ledger.TradeRequest{
		AccountID:   req.AccountID,
		DisplayName: req.DisplayName,
		Symbol:      req.Symbol,
		Side:        req.Side,
		Quantity:    req.Quantity,
		Round:       state.Round,
		Frozen:      state.Frozen,
	})
	if err != nil {
		status, reason := tradeFailure(err)
		metrics.TradeRejections.WithLabelValues(reason).Inc()
		writeError(w, err.Error(), status)
		return
	}

	metrics.TradesTotal.WithLabelValues(conf.Side).Inc()
	metrics.TradeLatency.WithLabelValues(conf.Side).Observe(time.Since(start).Seconds())

	slog.Info("trade executed",
		"trade_id", conf.TradeID,
		"account", conf.AccountID,
		"symbol", conf.Symbol,
		"side", conf.Side,
		"qty", conf.Quantity,
		"price", conf.Price.String(),
		"round", conf.Round,
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:     "trade_executed",
			Symbol:   conf.Symbol,
			Side:     conf.Side,
			Quantity: strconv.FormatInt(conf.Quantity, 10),
			Price:    conf.Price.String(),
			Round:    conf.Round,
		})
	}

	writeJSON(w, http.StatusOK, conf)
}

// tradeFailure maps ledger errors to an HTTP status and a metric label.
func tradeFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrMarketFrozen):
		return http.StatusConflict, "market_frozen"
	case errors.Is(err, ledger.ErrInstrumentUnavailable):
		return http.StatusNotFound, "instrument_unavailable"
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, ledger.ErrInsufficientCash):
		return http.StatusConflict, "insufficient_cash"
	case errors.Is(err, ledger.ErrInsufficientShares):
		return http.StatusConflict, "insufficient_shares"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// --- Portfolio & leaderboard ---

// GetPortfolio handles GET /api/v1/portfolio/{accountID}
func (s *Service) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	portfolio, err := s.ledger.GetPortfolio(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			writeError(w, "account not found", http.StatusNotFound)
			return
		}
		writeError(w, "failed to load portfolio", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

// GetLeaderboard handles GET /api/v1/leaderboard
// The leaderboard is a pure projection recomputed from current account and
// price state on every call.
func (s *Service) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		writeError(w, "failed to load accounts", http.StatusInternalServerError)
		return
	}
	instruments, err := s.store.ListInstruments(ctx)
	if err != nil {
		writeError(w, "failed to load instruments", http.StatusInternalServerError)
		return
	}

	metrics.Accounts.Set(float64(len(accounts)))

	entries := rank.Compute(accounts, rank.PriceIndex(instruments), s.ledger.StartingCash())
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Trade history ---

// ListAccountTrades handles
// GET /api/v1/accounts/{accountID}/trades?round=&symbol=&side=&q=
func (s *Service) ListAccountTrades(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	q := r.URL.Query()

	f := history.Filter{
		Symbol: q.Get("symbol"),
		Side:   q.Get("side"),
		Text:   q.Get("q"),
	}
	if roundStr := q.Get("round"); roundStr != "" {
		n, err := strconv.Atoi(roundStr)
		if err != nil || n < 1 {
			writeError(w, "round must be a positive integer", http.StatusBadRequest)
			return
		}
		f.Round = n
	}

	trades, err := s.recorder.Query(r.Context(), accountID, f)
	if err != nil {
		writeError(w, "failed to query trades", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

// --- Administrator surface ---

// ListAllTrades handles GET /api/v1/admin/trades
// The full execution-ordered trade log, for auditing and end-of-game review.
func (s *Service) ListAllTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.store.ListTrades(r.Context())
	if err != nil {
		writeError(w, "failed to list trades", http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []model.Trade{}
	}
	writeJSON(w, http.StatusOK, trades)
}

// PublishNews handles POST /api/v1/admin/news
func (s *Service) PublishNews(w http.ResponseWriter, r *http.Request) {
	var req NewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		writeError(w, "text is required", http.StatusBadRequest)
		return
	}

	result, err := s.shocks.Publish(r.Context(), req.Text, req.Severity)
	if err != nil {
		if errors.Is(err, shock.ErrUnknownSeverity) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, "failed to publish news", http.StatusInternalServerError)
		return
	}

	metrics.NewsEvents.WithLabelValues(req.Severity).Inc()

	slog.Info("news published",
		"event_id", result.Event.ID,
		"severity", req.Severity,
		"direction", result.Event.Direction,
		"applied", len(result.Applied),
		"skipped", len(result.Skipped),
	)
	if len(result.Skipped) > 0 {
		slog.Warn("news shock skipped instruments", "symbols", result.Skipped)
	}

	if s.wsHub != nil {
		prices := make(map[string]string, len(result.Applied))
		for symbol, price := range result.Applied {
			prices[symbol] = price.String()
		}
		s.wsHub.Broadcast(WSMessage{
			Type:     "news_published",
			Text:     result.Event.Text,
			Severity: result.Event.Severity,
			Prices:   prices,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

// GetRound handles GET /api/v1/round
func (s *Service) GetRound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rounds.Snapshot())
}

// StartRound handles POST /api/v1/admin/round/start
func (s *Service) StartRound(w http.ResponseWriter, r *http.Request) {
	var req StartRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DurationSeconds < 0 {
		writeError(w, "duration_seconds must be >= 0", http.StatusBadRequest)
		return
	}

	state := s.rounds.StartRound(time.Duration(req.DurationSeconds) * time.Second)
	slog.Info("round started", "round", state.Round, "duration_s", req.DurationSeconds)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{Type: "round_started", Round: state.Round})
	}
	writeJSON(w, http.StatusOK, state)
}

// FreezeRound handles POST /api/v1/admin/round/freeze
func (s *Service) FreezeRound(w http.ResponseWriter, r *http.Request) {
	state := s.rounds.Freeze()
	slog.Info("round frozen", "round", state.Round)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{Type: "round_frozen", Round: state.Round})
	}
	writeJSON(w, http.StatusOK, state)
}

// ResumeRound handles POST /api/v1/admin/round/resume
func (s *Service) ResumeRound(w http.ResponseWriter, r *http.Request) {
	state := s.rounds.Resume()
	slog.Info("round resumed", "round", state.Round, "frozen", state.Frozen)

	if s.wsHub != nil && !state.Frozen {
		s.wsHub.Broadcast(WSMessage{Type: "round_resumed", Round: state.Round})
	}
	writeJSON(w, http.StatusOK, state)
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
