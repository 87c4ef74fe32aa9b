// Package http is the contentd surface: a dev stand-in for the remote
// content service the mobile client talks to. It serves raw question
// bundles, bundled sign images, and the append-only results store.
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/roadprep/signquiz/internal/assets"
	"github.com/roadprep/signquiz/internal/quiz"
	"github.com/roadprep/signquiz/internal/results"
	"github.com/roadprep/signquiz/internal/storage"
)

// MountBundles serves bundle documents from bundleDir:
// GET /bundles/{key} -> <bundleDir>/<key>.json as producers wrote it;
// with ?normalized=1 the batch runs through the normalizer and the
// canonical questions come back instead.
func MountBundles(r chi.Router, bundleDir string, n *quiz.Normalizer) {
	r.Get("/{key}", func(w http.ResponseWriter, req *http.Request) {
		key := filepath.Base(chi.URLParam(req, "key"))
		raw, err := os.ReadFile(filepath.Join(bundleDir, key+".json"))
		if err != nil {
			http.Error(w, "bundle not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if req.URL.Query().Get("normalized") != "" && n != nil {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"key":       key,
				"questions": n.NormalizeBatch(raw),
			})
			return
		}
		_, _ = w.Write(raw)
	})
}

// MountSigns serves sign images out of the blob store.
// GET /signs/* -> blob at "/signs/<rest>";
// POST /signs/{category}/{name} stores an uploaded image there.
func MountSigns(r chi.Router, bs storage.BlobStore) {
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		key := "/signs/" + strings.TrimPrefix(chi.URLParam(req, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", contentTypeFor(key))
		_, _ = io.Copy(w, rc)
	})

	r.Post("/{category}/{name}", func(w http.ResponseWriter, req *http.Request) {
		f, _, err := req.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := "/signs/" + chi.URLParam(req, "category") + "/" + filepath.Base(chi.URLParam(req, "name"))
		canonical, err := bs.Put(key, f)
		if err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"key": canonical})
	})
}

// MountResolve exposes the asset resolver for client debugging:
// GET /resolve?path=... -> the reference the resolver would hand the
// renderer for that raw path.
func MountResolve(r chi.Router, res *assets.Resolver) {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		ref := res.Resolve(req.URL.Query().Get("path"))
		out := map[string]string{"category": string(ref.Category)}
		switch ref.Kind {
		case assets.KindLocal:
			out["kind"] = "local"
			out["handle"] = ref.Handle
		case assets.KindDefault:
			out["kind"] = "default"
			out["handle"] = ref.Handle
		case assets.KindRemote:
			out["kind"] = "remote"
			out["url"] = ref.URL
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
}

// MountResults exposes the persistence contract:
// POST /results appends one finished-attempt record,
// GET /results/{quizID} lists history newest-first.
func MountResults(r chi.Router, store results.Store) {
	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		var rec results.Record
		if err := json.NewDecoder(req.Body).Decode(&rec); err != nil {
			http.Error(w, "bad record: "+err.Error(), http.StatusBadRequest)
			return
		}
		if rec.QuizID == "" || rec.TotalQuestions <= 0 || rec.ScorePercent < 0 || rec.ScorePercent > 100 {
			http.Error(w, "bad record", http.StatusBadRequest)
			return
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt == 0 {
			rec.CreatedAt = time.Now().Unix()
		}
		if err := store.Save(req.Context(), rec); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": rec.ID})
	})

	r.Get("/{quizID}", func(w http.ResponseWriter, req *http.Request) {
		recs, err := store.ListByQuiz(req.Context(), chi.URLParam(req, "quizID"))
		if err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(recs)
	})
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
