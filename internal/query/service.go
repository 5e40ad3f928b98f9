package query

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"TxnEngine/internal/ledger"
	"TxnEngine/internal/projection"
)

// QueryService serves read-only account state over HTTP/JSON from the
// account projection. Responses carry as_of_update so callers can
// reason about freshness relative to the record stream.
type QueryService struct {
	proj *projection.AccountProjection
	log  zerolog.Logger
}

func NewQueryService(proj *projection.AccountProjection, log zerolog.Logger) *QueryService {
	return &QueryService{proj: proj, log: log}
}

// Register mounts the query endpoints on mux.
func (qs *QueryService) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /accounts", qs.handleList)
	mux.HandleFunc("GET /accounts/{client}", qs.handleGet)
}

type listResponse struct {
	Accounts   []ledger.AccountView `json:"accounts"`
	AsOfUpdate int64                `json:"as_of_update"`
}

type accountResponse struct {
	Account    ledger.AccountView `json:"account"`
	AsOfUpdate int64              `json:"as_of_update"`
}

func (qs *QueryService) handleList(w http.ResponseWriter, r *http.Request) {
	qs.writeJSON(w, http.StatusOK, listResponse{
		Accounts:   qs.proj.List(),
		AsOfUpdate: qs.proj.Applied(),
	})
}

func (qs *QueryService) handleGet(w http.ResponseWriter, r *http.Request) {
	client, err := strconv.ParseUint(r.PathValue("client"), 10, 16)
	if err != nil {
		qs.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid client id"})
		return
	}

	view, ok := qs.proj.Get(uint16(client))
	if !ok {
		qs.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown client"})
		return
	}

	qs.writeJSON(w, http.StatusOK, accountResponse{
		Account:    view,
		AsOfUpdate: qs.proj.Applied(),
	})
}

func (qs *QueryService) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		qs.log.Warn().Err(err).Msg("write query response")
	}
}
