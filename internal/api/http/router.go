package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-planner/internal/api/http/handlers"
	"github.com/spec-kit/workforce-planner/internal/auth"
	"github.com/spec-kit/workforce-planner/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Schedules      *handlers.SchedulesHandler
	Directory      *handlers.DirectoryHandler
	WorkItems      *handlers.WorkItemsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Accounts.Login)
	authGroup.Post("/register",
		cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleAdmin, domain.RoleDirector),
		cfg.Accounts.Register)
	authGroup.Post("/password/change",
		cfg.AuthMiddleware.Handle, auth.RequireAnyRole(),
		cfg.Accounts.ChangePassword)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())

	schedules := api.Group("/schedules")
	schedules.Post("", cfg.Schedules.Submit)
	schedules.Get("", cfg.Schedules.List)
	schedules.Delete("/:id",
		auth.RequireRole(domain.RoleAdmin, domain.RoleDirector, domain.RoleManager),
		cfg.Schedules.Delete)

	organizations := api.Group("/organizations")
	organizations.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Directory.CreateOrganization)
	organizations.Get("", cfg.Directory.ListOrganizations)
	organizations.Get("/:id", cfg.Directory.GetOrganization)
	organizations.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Directory.DeleteOrganization)

	teams := api.Group("/teams")
	teams.Post("", auth.RequireRole(domain.RoleAdmin, domain.RoleDirector), cfg.Directory.CreateTeam)
	teams.Get("", cfg.Directory.ListTeams)
	teams.Get("/:id", cfg.Directory.GetTeam)
	teams.Delete("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleDirector), cfg.Directory.DeleteTeam)

	employees := api.Group("/employees")
	employees.Post("",
		auth.RequireRole(domain.RoleAdmin, domain.RoleDirector, domain.RoleManager),
		cfg.Directory.CreateEmployee)
	employees.Get("", cfg.Directory.ListEmployees)
	employees.Get("/:id", cfg.Directory.GetEmployee)
	employees.Delete("/:id",
		auth.RequireRole(domain.RoleAdmin, domain.RoleDirector, domain.RoleManager),
		cfg.Directory.DeleteEmployee)

	leaves := api.Group("/leaves")
	leaves.Post("", cfg.WorkItems.CreateLeave)
	leaves.Get("", cfg.WorkItems.ListLeaves)
	leaves.Post("/:id/review",
		auth.RequireRole(domain.RoleAdmin, domain.RoleDirector, domain.RoleManager),
		cfg.WorkItems.ReviewLeave)

	tasks := api.Group("/tasks")
	tasks.Post("",
		auth.RequireRole(domain.RoleAdmin, domain.RoleDirector, domain.RoleManager),
		cfg.WorkItems.CreateTask)
	tasks.Get("", cfg.WorkItems.ListTasks)
	tasks.Post("/:id/status", cfg.WorkItems.UpdateTaskStatus)

	incidents := api.Group("/incidents")
	incidents.Post("", cfg.WorkItems.CreateIncident)
	incidents.Get("", cfg.WorkItems.ListIncidents)
}
