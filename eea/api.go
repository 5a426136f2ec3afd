package eea

import (
	"errors"
	"net/http"
	"time"

	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/ConsenSysQuorum/eea-gateway/metrics"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// SendRawTransactionArgs are the positional params of eea_sendRawTransaction.
type SendRawTransactionArgs []*string

// API is the "eea" JSON-RPC service.
type API struct {
	pipeline *Pipeline
	metrics  *metrics.Metrics
}

func NewAPI(pipeline *Pipeline, m *metrics.Metrics) *API {
	return &API{pipeline: pipeline, metrics: m}
}

// SendRawTransaction serves eea_sendRawTransaction. The reply is the hex
// hash of the privacy marker transaction.
func (a *API) SendRawTransaction(req *http.Request, args *SendRawTransactionArgs, reply *string) error {
	id := requestID(req)
	start := time.Now()
	var params []*string
	if args != nil {
		params = *args
	}
	log.Debug("rpc call eea_sendRawTransaction", "id", id, "remote", req.RemoteAddr)

	hash, err := a.pipeline.SendRawTransaction(req.Context(), params)
	if err != nil {
		var f *Fault
		if !errors.As(err, &f) {
			f = newFault(FaultInternal, err)
		}
		a.record(f.Outcome(), start)
		switch f.Kind {
		case FaultInternal:
			log.Error("eea_sendRawTransaction failed", "id", id, "err", f)
		case FaultEnclave, FaultUnauthorized:
			log.Warn("eea_sendRawTransaction failed", "id", id, "err", f)
		default:
			log.Info("eea_sendRawTransaction rejected", "id", id, "err", f)
		}
		return ToJSONRPCError(f)
	}

	a.record("success", start)
	log.Info("eea_sendRawTransaction accepted", "id", id, "hash", hash.Hex())
	*reply = hash.Hex()
	return nil
}

// requestID is the id the router's RequestID middleware assigned, or a new
// one when the call did not come through it.
func requestID(req *http.Request) string {
	if id := middleware.GetReqID(req.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func (a *API) record(outcome string, start time.Time) {
	if a.metrics != nil {
		a.metrics.RecordSubmission(outcome, time.Since(start))
	}
}
