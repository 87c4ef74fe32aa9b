package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/roadprep/signquiz/internal/api/http"
	"github.com/roadprep/signquiz/internal/assets"
	"github.com/roadprep/signquiz/internal/config"
	"github.com/roadprep/signquiz/internal/db"
	"github.com/roadprep/signquiz/internal/quiz"
	"github.com/roadprep/signquiz/internal/results"
	"github.com/roadprep/signquiz/internal/storage"
	"github.com/roadprep/signquiz/internal/trace"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := results.NewSQLStore(dbh)

	bs, err := storage.NewFSStore(cfg.AssetBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	signKeys, err := bs.List("/signs/")
	if err != nil {
		log.Fatalf("list signs: %v", err)
	}
	resolver := &assets.Resolver{
		Registry:   assets.NewRegistry(signKeys),
		RemoteBase: cfg.RemoteAssetBase,
		Tracer:     trace.LogTracer{},
	}

	policy, ok := quiz.ParsePolicy(cfg.CorrectPolicy)
	if !ok {
		log.Fatalf("unknown CORRECT_POLICY %q", cfg.CorrectPolicy)
	}
	normalizer := quiz.NewNormalizer(policy,
		quiz.WithLocale(cfg.SecondaryLocale),
		quiz.WithTracer(trace.LogTracer{}),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Route("/bundles", func(br chi.Router) { api.MountBundles(br, cfg.BundleDir, normalizer) })
	r.Route("/signs", func(sr chi.Router) { api.MountSigns(sr, bs) })
	r.Route("/resolve", func(rr chi.Router) { api.MountResolve(rr, resolver) })
	r.Route("/results", func(rr chi.Router) { api.MountResults(rr, store) })

	log.Printf("contentd listening on %s (db=%s, bundles=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.BundleDir)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
