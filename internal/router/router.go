package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	mem "pet-health-log/internal/adapters/storage/memory"
	pg "pet-health-log/internal/adapters/storage/postgres"
	"pet-health-log/internal/apidocs"
	"pet-health-log/internal/domain/alerts"
	"pet-health-log/internal/domain/conditions"
	"pet-health-log/internal/domain/glycemia"
	"pet-health-log/internal/domain/lab"
	"pet-health-log/internal/domain/pets"
	"pet-health-log/internal/domain/settings"
	"pet-health-log/internal/domain/treatments"
	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/domain/vetvisits"
	"pet-health-log/internal/metrics"
	"pet-health-log/internal/middleware"
	"pet-health-log/internal/platform/httpjson"
	"pet-health-log/internal/platform/logger"
)

type RateLimit struct {
	Disabled bool
	Requests int
	Window   time.Duration
}

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger // nil => Nop

	// APIKey vacío deshabilita el chequeo (modo dev).
	APIKey string

	CORSOrigins []string
	RateLimit   RateLimit

	// Docs es el documento OpenAPI armado al arrancar. nil => se arma acá.
	Docs *apidocs.Doc
}

// repos agrupa las implementaciones de storage elegidas al arrancar.
type repos struct {
	pets       pets.Repository
	glycemia   glycemia.Repository
	lab        lab.Repository
	vaccines   vaccines.Repository
	treatments treatments.Repository
	visits     vetvisits.Repository
	conditions conditions.Repository
	settings   settings.Repository
	alerts     alerts.Source
}

func newRepos(db *sql.DB) repos {
	if db != nil {
		return repos{
			pets:       pg.NewPetsRepo(db),
			glycemia:   pg.NewGlycemiaRepo(db),
			lab:        pg.NewLabRepo(db),
			vaccines:   pg.NewVaccinesRepo(db),
			treatments: pg.NewTreatmentsRepo(db),
			visits:     pg.NewVetVisitsRepo(db),
			conditions: pg.NewConditionsRepo(db),
			settings:   pg.NewSettingsRepo(db),
			alerts:     pg.NewAlertsSource(db),
		}
	}

	st := mem.NewStore()
	return repos{
		pets:       mem.NewPetRepo(st),
		glycemia:   mem.NewGlycemiaRepo(st),
		lab:        mem.NewLabRepo(st),
		vaccines:   mem.NewVaccineRepo(st),
		treatments: mem.NewTreatmentRepo(st),
		visits:     mem.NewVetVisitRepo(st),
		conditions: mem.NewConditionRepo(st),
		settings:   mem.NewSettingsRepo(st),
		alerts:     mem.NewAlertsSource(st),
	}
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(log))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.APIKeyHeader},
		MaxAge:         300,
	}))

	if rl := opts.RateLimit; !rl.Disabled && rl.Requests > 0 && rl.Window > 0 {
		r.Use(httprate.Limit(rl.Requests, rl.Window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, req *http.Request) {
				metrics.APIRateLimitHits.WithLabelValues(routeLabel(r, req)).Inc()
				httpjson.Write(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limited"})
			}),
		))
	}

	r.Use(middleware.APIKey(opts.APIKey))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Write(w, http.StatusOK, map[string]any{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
	})
	r.Handle("/metrics", promhttp.Handler())

	docs := opts.Docs
	if docs == nil {
		var err error
		if docs, err = apidocs.New(); err != nil {
			panic(err)
		}
	}
	r.Get("/openapi.json", docs.Handler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.json")))

	rp := newRepos(opts.DB)

	// Services por módulo
	petsSvc := pets.NewService(rp.pets)
	glycemiaSvc := glycemia.NewService(rp.glycemia, petsSvc, log.With(map[string]any{"module": "glycemia"}))
	labSvc := lab.NewService(rp.lab, petsSvc)
	vaccinesSvc := vaccines.NewService(rp.vaccines, petsSvc)
	treatmentsSvc := treatments.NewService(rp.treatments, petsSvc)
	visitsSvc := vetvisits.NewService(rp.visits, petsSvc)
	conditionsSvc := conditions.NewService(rp.conditions, petsSvc)
	settingsSvc := settings.NewService(rp.settings)
	alertsSvc := alerts.NewService(rp.alerts, log.With(map[string]any{"module": "alerts"}))

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc)
	glycemia.RegisterRoutes(r, glycemiaSvc)
	lab.RegisterRoutes(r, labSvc)
	vaccines.RegisterRoutes(r, vaccinesSvc)
	treatments.RegisterRoutes(r, treatmentsSvc)
	vetvisits.RegisterRoutes(r, visitsSvc)
	conditions.RegisterRoutes(r, conditionsSvc)
	settings.RegisterRoutes(r, settingsSvc)
	alerts.RegisterRoutes(r, alertsSvc)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Write(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	})

	return r
}

// routeLabel resuelve el patrón de la ruta (p.ej. /pets/{petID}). El limiter
// corre antes del ruteo, así que se busca en el mux.
func routeLabel(mux *chi.Mux, req *http.Request) string {
	if p := mux.Find(chi.NewRouteContext(), req.Method, req.URL.Path); p != "" {
		return p
	}
	return "unmatched"
}
