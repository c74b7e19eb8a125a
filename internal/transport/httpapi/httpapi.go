// Package httpapi is a thin HTTP transport for the contract layer. It is
// not a GraphQL engine: it accepts a JSON body naming an operation and its
// arguments, dispatches directly to the matching contract.Service method,
// and returns the result as JSON. Schema validation, query parsing and
// OIDC bearer-token verification are left to whatever real GraphQL gateway
// and auth proxy front this service in production — this package only
// needs identity claims that have already been resolved, carried as a
// comma-separated list in the X-Numtracker-Claims header.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/example/numtracker/internal/contract"
	"github.com/example/numtracker/internal/core/instrument"
	"github.com/example/numtracker/internal/errs"
)

// Handler dispatches JSON-encoded operations to a contract.Service.
type Handler struct {
	svc *contract.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *contract.Service) *Handler {
	return &Handler{svc: svc}
}

type request struct {
	Operation     string         `json:"operation"`
	Instrument    string         `json:"instrument,omitempty"`
	Visit         string         `json:"visit,omitempty"`
	Subdirectory  string         `json:"subdirectory,omitempty"`
	Detectors     []string       `json:"detectors,omitempty"`
	Filter        []string       `json:"filter,omitempty"`
	Configuration *configPayload `json:"configuration,omitempty"`
}

type configPayload struct {
	Name              string  `json:"name"`
	VisitTemplate     string  `json:"visitTemplate"`
	ScanTemplate      string  `json:"scanTemplate"`
	DetectorTemplate  string  `json:"detectorTemplate"`
	FallbackDirectory *string `json:"fallbackDirectory,omitempty"`
	FallbackExtension *string `json:"fallbackExtension,omitempty"`
	SetNumber         *int64  `json:"setNumber,omitempty"`
}

func (c *configPayload) toInstrument() instrument.Instrument {
	return instrument.Instrument{
		Name:              c.Name,
		VisitTemplate:     c.VisitTemplate,
		ScanTemplate:      c.ScanTemplate,
		DetectorTemplate:  c.DetectorTemplate,
		FallbackDirectory: c.FallbackDirectory,
		FallbackExtension: c.FallbackExtension,
	}
}

// ServeHTTP implements POST /graphql, accepting a {"operation": ...}
// envelope, and GET /schema, returning the authored SDL text.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/schema":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(h.svc.Schema(r.Context())))
		return
	case r.Method == http.MethodPost && r.URL.Path == "/graphql":
		h.dispatch(w, r)
		return
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	correlationID := uuid.New().String()
	log := slog.With("correlation_id", correlationID)

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	log.Info("dispatching operation", "operation", req.Operation)

	identity := identityFromHeader(r.Header.Get("X-Numtracker-Claims"))
	ctx := r.Context()

	var (
		result any
		err    error
	)

	switch req.Operation {
	case "paths":
		result, err = h.svc.Paths(ctx, identity, req.Instrument, req.Visit)
	case "configuration":
		result, err = h.svc.Configuration(ctx, identity, req.Instrument)
	case "configurations":
		result, err = h.svc.Configurations(ctx, identity, req.Filter)
	case "scan":
		result, err = h.svc.Scan(ctx, identity, req.Instrument, req.Visit, req.Subdirectory, req.Detectors)
	case "configure":
		if req.Configuration == nil {
			writeError(w, http.StatusBadRequest, errors.New("configure requires a configuration payload"))
			return
		}
		err = h.svc.Configure(ctx, identity, req.Configuration.toInstrument(), req.Configuration.SetNumber)
		result = map[string]bool{"ok": err == nil}
	default:
		writeError(w, http.StatusBadRequest, errors.New("unknown operation: "+req.Operation))
		return
	}

	if err != nil {
		log.Warn("operation failed", "error", err)
		writeTypedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if encErr := json.NewEncoder(w).Encode(result); encErr != nil {
		log.Error("failed to encode response", "error", encErr)
	}
}

func identityFromHeader(header string) contract.Identity {
	claims := make(map[string]bool)
	for _, c := range strings.Split(header, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			claims[c] = true
		}
	}
	return contract.Identity{Claims: claims}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeTypedError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindUnknownInstrument:
		status = http.StatusNotFound
	case errs.KindInvalidTemplate, errs.KindInvalidSession, errs.KindMissingFields:
		status = http.StatusBadRequest
	case errs.KindUnauthorized:
		status = http.StatusUnauthorized
	case errs.KindForbidden:
		status = http.StatusForbidden
	case errs.KindTrackerUnavailable, errs.KindTrackerRace:
		status = http.StatusConflict
	}
	writeError(w, status, err)
}
