package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/fileaccess/internal/files/blob"
	"github.com/aussiebroadwan/fileaccess/internal/files/service"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/pkg/httpx"
	"github.com/aussiebroadwan/fileaccess/pkg/jwtx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"

	_ "github.com/aussiebroadwan/fileaccess/api/files" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultMaxUploadBytes caps a single PUT body.
const DefaultMaxUploadBytes = 5 << 30

// RateLimits selects the profile of each endpoint group.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

// DefaultRateLimits returns the process wide profiles from httpx.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
		Public:   httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	blobs blob.Store

	TempAccessService *service.TempAccessService
	AccessGate        *service.AccessGate
	ObjectService     *service.ObjectService
	RecordService     *service.RecordService
	UserService       *service.UserService
	SessionService    *service.SessionService

	// DefaultTempAccessDays applies when ?days is absent.
	DefaultTempAccessDays int
	MaxUploadBytes        int64
	// SpoolDir holds archives while they are built; empty means os.TempDir.
	SpoolDir string
	Limits   RateLimits
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	blobs blob.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:                   http.NewServeMux(),
		verifier:              verifier,
		buildVersion:          buildVersion,
		startTime:             time.Now(),
		logger:                logger,
		store:                 st,
		blobs:                 blobs,
		DefaultTempAccessDays: jwtx.DefaultTempAccessDays,
		MaxUploadBytes:        DefaultMaxUploadBytes,
		Limits:                DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerSessions()
	r.registerRecords()
	r.registerFiles()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Temporary File Access API
//	@version		0.1.0
//	@description	Stores the files of published records and hands out temporary, bucket scoped download tokens.
//	@description
//	@description				Temporary access tokens are HS256 JWTs passed as the jwt query parameter.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/fileaccess
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token from POST /v1/sessions. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// POST /v1/users - strict rate limit by IP (bootstrap token guessing)
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{SessionService: r.SessionService}

	// POST /v1/sessions - strict rate limit by IP (password brute force)
	r.Mux.Handle("POST /v1/sessions",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerRecords() {
	h := &RecordsHandler{RecordService: r.RecordService}
	ta := &TempAccessHandler{
		TempAccessService: r.TempAccessService,
		DefaultDays:       r.DefaultTempAccessDays,
	}

	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.RequireAuthn(r.verifier),
		httpx.RateLimitByUser(r.Limits.Moderate),
	)

	// Open access records are readable without a session.
	get := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.OptionalAuthn(r.verifier),
		httpx.RateLimitByIP(r.Limits.Lenient),
	)

	securedUpdate := httpx.Chain(http.HandlerFunc(h.HandleSetOpenAccess),
		httpx.RequireAuthn(r.verifier),
		httpx.RateLimitByUser(r.Limits.Moderate),
	)

	// GET /tempfileaccess - moderate rate limit by user (token minting)
	securedTempAccess := httpx.Chain(ta,
		httpx.RequireAuthn(r.verifier),
		httpx.RateLimitByUser(r.Limits.Moderate),
	)

	r.Mux.Handle("POST /v1/records", securedCreate)
	r.Mux.Handle("GET /v1/records/{id}", get)
	r.Mux.Handle("PATCH /v1/records/{id}", securedUpdate)
	r.Mux.Handle("GET /v1/records/{id}/tempfileaccess", securedTempAccess)
}

func (r *Router) registerFiles() {
	h := &FilesHandler{
		AccessGate:     r.AccessGate,
		ObjectService:  r.ObjectService,
		MaxUploadBytes: r.MaxUploadBytes,
		SpoolDir:       r.SpoolDir,
	}

	// Downloads are keyed by IP and bucket so guessing tokens for one bucket
	// does not starve the others.
	download := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.OptionalAuthn(r.verifier),
		httpx.RateLimitByIPAndPathValue(r.Limits.Public, "bucket_id"),
	)

	securedUpload := httpx.Chain(http.HandlerFunc(h.HandlePut),
		httpx.RequireAuthn(r.verifier),
		httpx.RateLimitByUser(r.Limits.Moderate),
	)

	r.Mux.Handle("GET /v1/files/{bucket_id}", download)
	r.Mux.Handle("GET /v1/files/{bucket_id}/{key...}", download)
	r.Mux.Handle("PUT /v1/files/{bucket_id}/{key...}", securedUpload)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.blobs),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
}
