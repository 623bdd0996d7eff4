package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"sam-requests/internal/adapters/push/expo"
	mem "sam-requests/internal/adapters/storage/memory"
	pg "sam-requests/internal/adapters/storage/postgres"
	"sam-requests/internal/adapters/storage/sqlite"
	"sam-requests/internal/domain/notifications"
	"sam-requests/internal/domain/requests"
	"sam-requests/internal/domain/services"
	"sam-requests/internal/domain/users"
	"sam-requests/internal/domain/visibility"
	"sam-requests/internal/middleware"
	"sam-requests/internal/platform/logger"
	"sam-requests/internal/ports/auth"
	"sam-requests/internal/ports/push"
	"sam-requests/internal/realtime"

	_ "sam-requests/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Backend de storage, en orden de preferencia:
	// DB explícita => Postgres; SQLitePath => SQLite; nada => in-memory.
	DB         *sql.DB
	SQLitePath string

	// Opcional: sender de push. Si es nil se arma el cliente Expo
	// (ExpoPushURL vacío usa el gateway público).
	PushSender  push.Sender
	ExpoPushURL string

	// Carga catálogo y usuarios de demo en el backend in-memory.
	SeedDemoData bool

	Log logger.Logger
}

// pendingViaRepo responde el chequeo de pendiente que necesita el sweep,
// leyendo directo del repo para no cerrar un ciclo con el service.
type pendingViaRepo struct {
	repo requests.Repository
}

func (p pendingViaRepo) IsPending(ctx context.Context, requestID string) (bool, error) {
	req, err := p.repo.GetByID(ctx, requestID)
	if err != nil {
		return false, err
	}
	return req.State == requests.StatePending, nil
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		requestRepo      requests.Repository
		userRepo         users.Repository
		serviceRepo      services.Repository
		notificationRepo notifications.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back", map[string]any{"err": err.Error()})
			}
		}
	}

	switch {
	case db != nil:
		requestRepo = pg.NewRequestsRepo(db)
		userRepo = pg.NewUsersRepo(db)
		serviceRepo = pg.NewServicesRepo(db)
		notificationRepo = pg.NewNotificationsRepo(db)
	case opts.SQLitePath != "":
		sdb, err := sqlite.Open(opts.SQLitePath)
		if err != nil {
			log.Error("sqlite unavailable, using in-memory", map[string]any{"err": err.Error()})
			requestRepo = mem.NewRequestRepo()
			userRepo = mem.NewUserRepo()
			serviceRepo = mem.NewServiceRepo()
			notificationRepo = mem.NewNotificationRepo()
			break
		}
		requestRepo = sqlite.NewRequestsRepo(sdb)
		userRepo = sqlite.NewUsersRepo(sdb)
		serviceRepo = sqlite.NewServicesRepo(sdb)
		notificationRepo = sqlite.NewNotificationsRepo(sdb)
	default:
		requestRepo = mem.NewRequestRepo()
		userRepo = mem.NewUserRepo()
		serviceRepo = mem.NewServiceRepo()
		notificationRepo = mem.NewNotificationRepo()
		if opts.SeedDemoData {
			if err := mem.SeedDemoData(context.Background(), userRepo, serviceRepo); err != nil {
				log.Warn("demo seed failed", map[string]any{"err": err.Error()})
			}
		}
	}

	sender := opts.PushSender
	if sender == nil {
		if c, err := expo.NewClient(expo.Config{BaseURL: opts.ExpoPushURL}); err == nil {
			sender = c
		} else {
			log.Warn("expo client unavailable, push disabled", map[string]any{"err": err.Error()})
		}
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo)
	servicesSvc := services.NewService(serviceRepo)

	dispatcher := notifications.NewDispatcher(
		notificationRepo,
		usersSvc,
		servicesSvc,
		pendingViaRepo{repo: requestRepo},
		sender,
		log,
	)

	resolver := visibility.NewResolver(servicesSvc)
	hub := realtime.NewHub(log)

	requestsSvc := requests.NewService(requestRepo, dispatcher, resolver, hub)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	services.RegisterRoutes(r, servicesSvc)
	requests.RegisterRoutes(r, requestsSvc, resolver)
	notifications.RegisterRoutes(r, dispatcher, requestsSvc)

	// Canal realtime: snapshot completo por SSE
	r.Get("/requests/stream", realtime.StreamHandler(hub, requestsSvc, resolver))

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
