package assets

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"path"
	"time"
)

// Handler serves the assets of src over HTTP, named by the request path.
// Mount it behind http.StripPrefix:
//
//	mux.Handle("/assets/", http.StripPrefix("/assets/", assets.Handler(src)))
func Handler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		ref, err := cleanRef(r.URL.Path)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		data, err := src.Fetch(r.Context(), ref)
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}

		if ct := mime.TypeByExtension(path.Ext(ref)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		http.ServeContent(w, r, ref, time.Time{}, bytes.NewReader(data))
	})
}
