package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	gqlschema "github.com/roach88/worldgraph/internal/graphql/schema"
)

const maxBodyBytes = 1 << 20

type requestIDKey struct{}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID keeps a caller supplied X-Request-Id or assigns a new one.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = s.ids.Generate()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := RequestID(r.Context())

	sch, err := s.Schema()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	req, err := decodeRequest(w, r)
	if err != nil {
		s.log.Debugw("Bad GraphQL request", "requestId", id, "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res := gqlschema.Execute(r.Context(), sch, req)
	out := gqlschema.ResultMap(res)

	codes := errorCodes(out)
	if s.metrics != nil {
		s.metrics.ObserveRequest(r.Method, time.Since(start), codes)
	}
	s.log.Infow("GraphQL request",
		"requestId", id,
		"operation", req.OperationName,
		"took", time.Since(start),
		"errors", len(res.Errors),
	)

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	types, err := s.Rebuild(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"storageTypes": types})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if _, err := s.Schema(); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (gqlschema.Request, error) {
	var req gqlschema.Request

	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return req, fmt.Errorf("variables: %w", err)
			}
		}
	} else {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			return req, fmt.Errorf("decode body: %w", err)
		}
	}

	if req.Query == "" {
		return req, errors.New("missing query")
	}
	return req, nil
}

func errorCodes(out map[string]any) []string {
	errs, _ := out["errors"].([]any)
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		m, _ := e.(map[string]any)
		if code, ok := m["code"].(string); ok {
			codes = append(codes, code)
		} else {
			codes = append(codes, "GRAPHQL_ERROR")
		}
	}
	return codes
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]any{{"message": err.Error()}},
	})
}
