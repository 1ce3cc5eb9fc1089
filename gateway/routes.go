package gateway

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fanforge/native/fees"
	"fanforge/native/score"
)

func (s *Server) handleFeeQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TxType       string `json:"txType"`
		Gross        string `json:"gross"`
		Denomination string `json:"denomination"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	gross, ok := parseAmount(req.Gross)
	if !ok {
		badRequest(w, "invalid gross amount")
		return
	}
	params := s.currentParams()
	if params == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "registry not configured"})
		return
	}
	denom := fees.DenomFanCoin
	if strings.EqualFold(req.Denomination, "fiat") {
		denom = fees.DenomFiatCents
	}
	calc := fees.NewCalculator(params.Fees)
	breakdown, err := calc.Compute(req.TxType, gross, denom)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"txType": breakdown.TxType,
		"gross":  breakdown.Gross.String(),
		"fee":    breakdown.Fee.String(),
		"net":    breakdown.Net.String(),
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req score.Inputs
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	params := s.currentParams()
	if params == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "registry not configured"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"score": score.Compute(params.Weights, req)})
}

func (s *Server) handleCommitmentCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Owner        string `json:"owner"`
		Amount       string `json:"amount"`
		DurationDays uint32 `json:"durationDays"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		badRequest(w, "invalid amount")
		return
	}
	record, err := s.commitments.Create(req.Owner, amount, req.DurationDays)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleCommitmentGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.commitments.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCommitmentSettle(w http.ResponseWriter, r *http.Request) {
	record, err := s.commitments.SettleMaturity(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCommitmentWithdrawEarly(w http.ResponseWriter, r *http.Request) {
	record, err := s.commitments.WithdrawEarly(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGuildCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		ContributionBps uint32 `json:"contributionBps"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	record, err := s.guilds.Create(req.Name, req.ContributionBps)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleGuildGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.guilds.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGuildAddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Creator string  `json:"creator"`
		Score   float64 `json:"score"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	record, err := s.guilds.AddMember(chi.URLParam(r, "id"), req.Creator, req.Score)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGuildContribute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Member   string `json:"member"`
		Earnings string `json:"earnings"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	earnings, ok := parseAmount(req.Earnings)
	if !ok {
		badRequest(w, "invalid earnings amount")
		return
	}
	split, err := s.guilds.Contribute(chi.URLParam(r, "id"), req.Member, earnings)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, split)
}

func (s *Server) handlePitchCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Creator      string `json:"creator"`
		Title        string `json:"title"`
		Goal         string `json:"goal"`
		DurationDays uint32 `json:"durationDays"`
		RewardTiers  uint32 `json:"rewardTiers"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	goal, ok := parseAmount(req.Goal)
	if !ok {
		badRequest(w, "invalid goal amount")
		return
	}
	record, err := s.pitches.Create(req.Creator, req.Title, goal, req.DurationDays, req.RewardTiers)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handlePitchGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.pitches.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePitchContribute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Backer string `json:"backer"`
		Amount string `json:"amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		badRequest(w, "invalid amount")
		return
	}
	record, err := s.pitches.Contribute(chi.URLParam(r, "id"), req.Backer, amount)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePitchClose(w http.ResponseWriter, r *http.Request) {
	record, err := s.pitches.CloseWindow(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePitchDelivery(w http.ResponseWriter, r *http.Request) {
	record, err := s.pitches.ConfirmDelivery(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePayoutRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account string `json:"account"`
		Amount  string `json:"amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		badRequest(w, "invalid amount")
		return
	}
	record, err := s.payouts.RequestWithdrawal(req.Account, amount)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handlePayoutGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.payouts.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePayoutApprove(w http.ResponseWriter, r *http.Request) {
	record, err := s.payouts.Approve(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
