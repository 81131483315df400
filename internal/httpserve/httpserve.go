// Package httpserve is the HTTP surface over internal/engine. Adapted from
// the teacher project's internal/httpserver, with table/row endpoints
// replaced by blob-handle and directory-name endpoints.
package httpserve

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"verter/internal/engine"
)

// Options configures authentication and write access for the HTTP server.
type Options struct {
	RequireToken string
	ReadOnly     bool
}

// Start builds the mux and blocks in http.ListenAndServe.
func Start(addr string, eng *engine.Engine, opts Options) error {
	mux := newMux(eng, opts)
	logrus.WithField("addr", addr).Info("httpserve: listening")
	return http.ListenAndServe(addr, mux)
}

func newMux(eng *engine.Engine, opts Options) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/alloc", func(w http.ResponseWriter, r *http.Request) {
		if !checkWrite(w, r, opts) {
			return
		}
		h, err := eng.Alloc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		io.WriteString(w, strconv.FormatUint(h, 10)+"\n")
	})

	mux.HandleFunc("/root", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			data, err := eng.ReadRoot()
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			w.Write(data)
		case http.MethodPut:
			if !checkWrite(w, r, opts) {
				return
			}
			body, _ := io.ReadAll(r.Body)
			if err := eng.WriteRoot(body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			io.WriteString(w, "OK\n")
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/blob/", func(w http.ResponseWriter, r *http.Request) {
		h, err := strconv.ParseUint(strings.TrimPrefix(r.URL.Path, "/blob/"), 10, 64)
		if err != nil {
			http.Error(w, "bad handle", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodGet:
			data, err := eng.Read(h)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			w.Write(data)
		case http.MethodPut:
			if !checkWrite(w, r, opts) {
				return
			}
			body, _ := io.ReadAll(r.Body)
			if err := eng.Write(h, body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			io.WriteString(w, "OK\n")
		case http.MethodDelete:
			if !checkWrite(w, r, opts) {
				return
			}
			if err := eng.Delete(h); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			io.WriteString(w, "OK\n")
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/stat/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h, err := strconv.ParseUint(strings.TrimPrefix(r.URL.Path, "/stat/"), 10, 64)
		if err != nil {
			http.Error(w, "bad handle", http.StatusBadRequest)
			return
		}
		st, err := eng.Stat(h)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		io.WriteString(w, st.String()+"\n")
	})

	mux.HandleFunc("/dir", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		names, err := eng.List()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, n := range names {
			io.WriteString(w, n+"\n")
		}
	})

	mux.HandleFunc("/dir/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/dir/")
		if name == "" {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodGet:
			data, err := eng.Get(name)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			w.Write(data)
		case http.MethodPut:
			if !checkWrite(w, r, opts) {
				return
			}
			body, _ := io.ReadAll(r.Body)
			if _, err := eng.Put(name, body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			io.WriteString(w, "OK\n")
		case http.MethodDelete:
			if !checkWrite(w, r, opts) {
				return
			}
			if err := eng.Remove(name); err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			io.WriteString(w, "OK\n")
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return mux
}

func checkWrite(w http.ResponseWriter, r *http.Request, opts Options) bool {
	if opts.ReadOnly {
		http.Error(w, "read-only", http.StatusForbidden)
		return false
	}
	if opts.RequireToken != "" && r.Header.Get("Authorization") != "Bearer "+opts.RequireToken {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}
