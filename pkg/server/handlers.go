package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/navtree/internal/errors"
	"github.com/vango-dev/navtree/pkg/manifest"
	"github.com/vango-dev/navtree/pkg/router"
)

// statusByCode maps error codes to HTTP status codes. Unlisted codes
// are 500.
var statusByCode = map[string]int{
	"E101": http.StatusNotFound,
	"E102": http.StatusConflict,
	"E201": http.StatusNotFound,
	"E202": http.StatusConflict,
	"E301": http.StatusBadRequest,
	"E302": http.StatusBadRequest,
	"E303": http.StatusNotFound,
	"E401": http.StatusNotFound,
	"E701": http.StatusBadRequest,
}

type errorResponse struct {
	Error *errors.NavtreeError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes it as JSON with the matching status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ne := errors.Classify(err, "E702")
	status, ok := statusByCode[ne.Code]
	if !ok {
		status = http.StatusInternalServerError
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: ne})
}

func badRequest(format string, args ...any) error {
	return errors.New("E701").WithDetail(fmt.Sprintf(format, args...))
}

// targetPath returns the navigation target of r: the "path" query
// parameter, or for /view/* the wildcard plus the raw query.
func targetPath(r *http.Request) (string, bool) {
	if p := r.URL.Query().Get("path"); p != "" {
		return p, true
	}
	rest := chi.URLParam(r, "*")
	if rest == "" && !strings.HasPrefix(r.URL.Path, "/view/") {
		return "", false
	}
	p := "/" + rest
	if r.URL.RawQuery != "" {
		p += "?" + r.URL.RawQuery
	}
	return p, true
}

// handleResolve navigates without rendering and returns the page as JSON.
// A miss with a fallback view answers with the fallback's status.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	path, ok := targetPath(r)
	if !ok {
		s.writeError(w, r, badRequest("missing path"))
		return
	}

	page, err := s.NewRouter(false).Navigate(r.Context(), path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, page.Status, page)
}

// handleView navigates and writes the rendered markup.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	path, ok := targetPath(r)
	if !ok {
		path = "/"
	}

	page, err := s.NewRouter(true).Navigate(r.Context(), path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(page.Status)
	w.Write([]byte(page.HTML))
}

type routesResponse struct {
	Routes   []router.Route `json:"routes"`
	NotFound *router.View   `json:"notFound,omitempty"`
}

// handleListRoutes lists the tree as JSON, or as a manifest with
// ?format=hcl.
func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	var resp routesResponse
	var hcl []byte
	format := r.URL.Query().Get("format")

	s.readTree(func(tree *router.Tree) {
		if format == "hcl" {
			hcl = manifest.FromTree(tree, tree.NotFound()).Bytes()
			return
		}
		resp.Routes = tree.Routes()
		resp.NotFound = tree.NotFound()
	})

	switch format {
	case "hcl":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write(hcl)
	case "", "json":
		if resp.Routes == nil {
			resp.Routes = []router.Route{}
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		s.writeError(w, r, badRequest("unknown format %q", format))
	}
}

// appendRequest is the body of POST /routes.
type appendRequest struct {
	Parent  string          `json:"parent"`
	Segment string          `json:"segment"`
	View    router.View     `json:"view"`
	Capture json.RawMessage `json:"capture,omitempty"`
	Name    string          `json:"name,omitempty"`
}

// wildcard decodes the capture field: "single", "remainder" or a
// segment count. Without it the segment is a literal.
func (req appendRequest) wildcard() (router.Wildcard, error) {
	if len(req.Capture) == 0 || string(req.Capture) == "null" {
		if req.Name != "" {
			return router.Literal, badRequest("name %q given without capture", req.Name)
		}
		return router.Literal, nil
	}

	var arity router.Arity
	var word string
	if err := json.Unmarshal(req.Capture, &word); err == nil {
		switch word {
		case "single":
			arity = router.Single
		case "remainder":
			arity = router.Remainder
		default:
			n, err := strconv.Atoi(word)
			if err != nil {
				return router.Literal, badRequest("capture must be single, remainder, or a segment count; got %q", word)
			}
			arity = router.Count(n)
		}
	} else {
		var n int
		if err := json.Unmarshal(req.Capture, &n); err != nil {
			return router.Literal, badRequest("capture must be a string or whole number")
		}
		arity = router.Count(n)
	}
	return router.Capture(req.Name, arity), nil
}

func (s *Server) handleAppendRoute(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest("decode body: %v", err))
		return
	}
	wc, err := req.wildcard()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var path string
	err = s.withTree(func(tree *router.Tree) error {
		var err error
		path, err = tree.AppendSegment(req.Parent, req.Segment, req.View, wc)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("route added", "path", path)
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

func (s *Server) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, r, badRequest("missing path"))
		return
	}
	var view router.View
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		s.writeError(w, r, badRequest("decode body: %v", err))
		return
	}

	err := s.withTree(func(tree *router.Tree) error {
		return tree.UpdateView(path, view)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("view updated", "path", path)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveRoute(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, r, badRequest("missing path"))
		return
	}

	err := s.withTree(func(tree *router.Tree) error {
		return tree.RemoveSegment(path)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("route removed", "path", path)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	tree, err := s.config.Reload()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.SetTree(tree)

	s.logger.Info("tree reloaded", "routes", tree.Len())
	writeJSON(w, http.StatusOK, map[string]int{"routes": tree.Len()})
}
