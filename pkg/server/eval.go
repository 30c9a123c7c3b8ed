package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/amebel/hyperon-experimental/pkg/sexpr"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/logging"
)

// maxProgramBytes bounds the size of an /eval request body.
const maxProgramBytes = 1 << 20

// EvalRequest is the body of an /eval request.
type EvalRequest struct {
	Program string `json:"program"`
}

// EvalResponse lists the results of every "!" of the program in order.
// Results holds the evaluations that completed before an error.
type EvalResponse struct {
	Results [][]string `json:"results"`
	Error   string     `json:"error,omitempty"`
}

// handleEval runs the posted program against the runner's space:
//
//	POST /eval
//	{"program": "(= (double $x) (* $x 2)) !(double 21)"}
//
//	200 OK
//	{"results": [["42"]]}
//
// A malformed program answers 400. An evaluation cut short by the request
// context answers 503.
func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req EvalRequest
	body := http.MaxBytesReader(w, r.Body, maxProgramBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, EvalResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	ctx := logging.WithCommand(r.Context(), "eval")

	s.runMu.Lock()
	results, err := s.runner.Run(ctx, req.Program)
	s.runMu.Unlock()

	resp := EvalResponse{Results: make([][]string, 0, len(results))}
	for _, out := range results {
		texts := make([]string, len(out))
		for i, a := range out {
			texts[i] = a.String()
		}
		resp.Results = append(resp.Results, texts)
	}

	if err != nil {
		resp.Error = err.Error()
		code := http.StatusServiceUnavailable
		var syntaxErr *sexpr.SyntaxError
		if errors.As(err, &syntaxErr) {
			code = http.StatusBadRequest
		}
		s.logger.WarnContext(ctx, "evaluation failed", "error", err)
		writeJSON(w, code, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
