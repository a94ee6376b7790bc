package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/photomscompanion/api"
	"github.com/camden-git/photomscompanion/assets"
	"github.com/camden-git/photomscompanion/config"
	"github.com/camden-git/photomscompanion/gallery"
	"github.com/camden-git/photomscompanion/handlers"
	"github.com/camden-git/photomscompanion/realtime"
	"github.com/camden-git/photomscompanion/session"
	"github.com/camden-git/photomscompanion/store"
	"github.com/camden-git/photomscompanion/uploader"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	log.Printf("Ensuring data directory exists: %s", cfg.DataDir)
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create data directory %s: %v", cfg.DataDir, err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize local database: %v", err)
	}
	defer st.Close()

	assetCache, err := assets.NewCache(cfg.AssetCachePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize asset cache: %v", err)
	}

	// the client asks the session manager for tokens, and the session manager
	// authenticates through the client; the closure breaks the cycle
	var mgr *session.Manager
	client := api.NewClient(cfg.ServerURL, cfg.RequestTimeout, func(ctx context.Context) (string, error) {
		return mgr.Token(ctx)
	})
	mgr = session.NewManager(client, st)
	mgr.Restore()

	hub := realtime.NewHub(cfg.UIOrigin)
	go hub.Run()

	ctrl := gallery.NewController(client, st, hub)
	ctrl.Start()
	defer ctrl.Stop()

	log.Printf("Initializing upload worker pool (Workers: %d, Queue Size: %d)...", cfg.NumUploadWorkers, cfg.UploadQueueSize)
	up := uploader.New(client, ctrl, hub, cfg.UploadQueueSize, cfg.NumUploadWorkers)
	defer up.Stop()

	log.Printf("Remote server: %s", cfg.ServerURL)
	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Asset cache: %s", cfg.AssetCachePath)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{cfg.UIOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	galleryHandler := &handlers.GalleryHandler{Controller: ctrl}
	photoHandler := &handlers.PhotoHandler{Controller: ctrl}
	editorHandler := handlers.NewEditorHandler(ctrl, client, assetCache)
	sessionHandler := &handlers.SessionHandler{Manager: mgr, Collection: ctrl}
	uploadHandler := &handlers.UploadHandler{Uploader: up}
	mirrorHandler := &handlers.MirrorHandler{Store: st}

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Post("/login", sessionHandler.Login)
			r.Post("/register", sessionHandler.Register)
			r.Post("/logout", sessionHandler.Logout)
		})

		r.Route("/gallery", func(r chi.Router) {
			r.Get("/", galleryHandler.GetState)
			r.Post("/search", galleryHandler.Search)
			r.Post("/filters", galleryHandler.SetFilters)
			r.Post("/recent", galleryHandler.ShowRecent)
			r.Post("/clear-filters", galleryHandler.ClearFilters)
			r.Post("/reset", galleryHandler.ResetAll)
			r.Post("/page", galleryHandler.Page)
		})

		r.Route("/photos/{photo_id}", func(r chi.Router) {
			r.Get("/", photoHandler.GetPhoto)
			r.Put("/", photoHandler.UpdatePhoto)
			r.Delete("/", photoHandler.DeletePhoto)
			r.Post("/ai-tags", photoHandler.GenerateAITags)
			r.Post("/tags", photoHandler.AddTag)
			r.Delete("/tags/{tag_index}", photoHandler.RemoveTag)
			r.Post("/edit-session", editorHandler.CreateSession)
		})

		r.Route("/edit-sessions/{session_id}", func(r chi.Router) {
			r.Put("/", editorHandler.UpdateSession)
			r.Delete("/", editorHandler.DeleteSession)
			r.Get("/preview", editorHandler.Preview)
			r.Post("/submit", editorHandler.Submit)
		})

		r.Post("/uploads", uploadHandler.Enqueue)
		r.Get("/mirror", mirrorHandler.Search)
	})

	r.Get("/ws", hub.ServeWS)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}
	serverAddr := ":" + port
	log.Printf("Companion listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
