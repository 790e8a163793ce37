package api

import (
	"net/http"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api/middleware"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/grant"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/keys"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/tasks"
)

type Server struct {
	processor   *grant.Processor
	registrar   *grant.Registrar
	pipeline    core.ClaimPipeline
	holder      *keys.Holder
	taskManager *tasks.Manager
	baseURL     string
}

func NewServer(
	processor *grant.Processor,
	registrar *grant.Registrar,
	pipeline core.ClaimPipeline,
	holder *keys.Holder,
	taskManager *tasks.Manager,
	baseURL string,
) *Server {
	return &Server{
		processor:   processor,
		registrar:   registrar,
		pipeline:    pipeline,
		holder:      holder,
		taskManager: taskManager,
		baseURL:     baseURL,
	}
}

func (s *Server) Routes(resourceServerKey []byte) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)
	mux.HandleFunc("GET "+DiscoveryRoute, s.handleDiscovery)
	mux.HandleFunc("GET "+JWKSRoute, s.handleJWKS)

	// token endpoint, consumed by clients
	mux.HandleFunc("POST "+TokenRoute, s.handleToken)

	// permission and task endpoints, consumed by resource servers
	protected := http.NewServeMux()
	protected.HandleFunc("POST "+PermissionsRoute, s.handlePermissions)
	protected.HandleFunc("GET "+TasksRoute, s.handleTasks)
	protected.HandleFunc("POST "+TriggerTaskRoute, s.handleTaskTrigger)

	guarded := middleware.ResourceServerAuth(resourceServerKey)(protected)
	mux.Handle(PermissionsRoute, guarded)
	mux.Handle(TasksRoute, guarded)
	mux.Handle(TasksRoute+"/", guarded)

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
