package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/icanhazuma"

	TokenRoute       = "/uma/token"
	PermissionsRoute = "/uma/permissions"
	JWKSRoute        = "/uma/jwks"

	TasksRoute       = "/uma/tasks"
	TriggerTaskRoute = TasksRoute + "/{name}/trigger"

	DiscoveryRoute = "/.well-known/uma2-configuration"
)
