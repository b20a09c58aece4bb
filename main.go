package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"lg/protein-plate-api/internal/session"
	"lg/protein-plate-api/internal/store"
)

// ensureSession makes sure the configured session exists, creating it when
// missing. With no id configured a new session is created and its id logged
// so it can be pinned in .env.
func ensureSession(ctx context.Context, st store.Store, id uuid.UUID, opts session.Options) (uuid.UUID, error) {
	if id == uuid.Nil {
		s, err := st.Create(ctx)
		if err != nil {
			return uuid.Nil, err
		}
		log.Printf("[ensureSession] created session %s; set SESSION_ID to keep it", s.ID)
		return s.ID, nil
	}

	_, err := st.Load(ctx, id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, err
	}
	if err := st.Save(ctx, session.New(id, opts)); err != nil {
		return uuid.Nil, err
	}
	log.Printf("[ensureSession] created session %s", id)
	return id, nil
}

func newRouter(h *Handler, origins []string) http.Handler {
	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

func main() {
	log.SetPrefix("lg/protein-plate-api: ")

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	opts := session.Options{Notifier: session.LogNotifier}

	var st store.Store
	if cfg.DBURL == "" {
		log.Println("DB_URL not set; sessions are kept in memory")
		st = store.NewMemory(opts)
	} else {
		pool, err := store.Connect(ctx, cfg.DBURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		fmt.Println("DB pool ready!")
		st = store.NewPostgres(pool, opts)
	}

	sessionID, err := ensureSession(ctx, st, cfg.SessionID, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to prepare session: %v\n", err)
		os.Exit(1)
	}

	h := newHandler(st, sessionID, nil)

	jobs, err := startJobs(h, cfg.IntakeResetSchedule)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid INTAKE_RESET_SCHEDULE %q: %v\n", cfg.IntakeResetSchedule, err)
		os.Exit(1)
	}
	defer jobs.Stop()

	srv := &http.Server{
		Addr:              cfg.addr(),
		Handler:           newRouter(h, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
