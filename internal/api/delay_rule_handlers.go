package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/skylens/flightpulse/internal/analysis"
	"github.com/skylens/flightpulse/internal/pkg/httputil"
)

// delayRuleResponse is the wire shape of one mined rule.
type delayRuleResponse struct {
	Rule       string  `json:"rule"`
	Support    float64 `json:"support"`
	Confidence float64 `json:"confidence"`
	Lift       float64 `json:"lift"`
}

// TriggerDelayRules handles POST /api/delay-rules/refresh. The mining pass
// runs in the background; the response returns immediately.
func (h *Handlers) TriggerDelayRules(w http.ResponseWriter, r *http.Request) {
	err := h.runner.Trigger()
	if errors.Is(err, analysis.ErrAlreadyRunning) {
		httputil.JSON(w, http.StatusConflict, map[string]string{"status": "already_running"})
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Accepted(w, map[string]string{"status": "started"})
}

// GetDelayRuleStatus handles GET /api/delay-rules/status.
func (h *Handlers) GetDelayRuleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.runner.Status())
}

// GetTopDelayRules handles GET /api/delay-rules/top?top_n=N. It reads only
// the persisted result of the last successful run; it never mines.
func (h *Handlers) GetTopDelayRules(w http.ResponseWriter, r *http.Request) {
	topN := 10
	if v := r.URL.Query().Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.BadRequest(w, "top_n must be an integer")
			return
		}
		topN = n
	}
	if topN < 1 {
		httputil.BadRequest(w, "top_n must be at least 1")
		return
	}

	rules, err := h.rules.Top(topN)
	if errors.Is(err, analysis.ErrNotComputed) {
		httputil.NotFound(w, "delay rules not computed yet")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	out := make([]delayRuleResponse, len(rules))
	for i, rule := range rules {
		out[i] = delayRuleResponse{
			Rule:       rule.Text,
			Support:    rule.Support,
			Confidence: rule.Confidence,
			Lift:       rule.Lift,
		}
	}
	httputil.OK(w, out)
}
