package gateway

import (
	"context"
	"net/http"

	"estech/inference-gateway/pkg/dispatch"
	"estech/inference-gateway/pkg/forward"
)

// Compute handles the legacy compute endpoint:
//
//	GET /api/v1/compute?impl=<service>&input=<text>[&path=<path>]
//
// It runs the same pipeline as ServeHTTP with a GET to path (default "/")
// carrying {input: <text>}, and wraps the backend body in the compute
// response envelope.
func (g *Gateway) Compute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	g.serve(w, r, func(ctx context.Context, tr Trace) (*forward.Response, error) {
		req, err := computeRequest(r)
		if err != nil {
			return nil, err
		}
		resp, err := g.Dispatch(ctx, req)
		if err != nil {
			return nil, err
		}
		return g.computeEnvelope(tr, req.Impl, resp.Body)
	})
}

func computeRequest(r *http.Request) (*dispatch.Request, error) {
	q := r.URL.Query()
	impl := q.Get("impl")
	if impl == "" {
		return nil, &dispatch.InvalidRequestError{Reason: "missing impl"}
	}
	if !q.Has("input") {
		return nil, &dispatch.InvalidRequestError{Reason: "missing input"}
	}
	path := q.Get("path")
	if path == "" {
		path = "/"
	}
	return &dispatch.Request{
		Impl:   impl,
		Path:   path,
		Method: http.MethodGet,
		Input:  dispatch.Fields{"input": q.Get("input")},
	}, nil
}
