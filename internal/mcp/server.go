package mcp

import (
	"context"
	"log/slog"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DatasetService defines dataset operations needed by MCP.
type DatasetService interface {
	Import(ctx context.Context, req dataset.ImportRequest) (*dataset.Summary, error)
	ClearVersion(ctx context.Context, version string, confirmed bool) (int, error)
	ClearAll(ctx context.Context, confirmed bool) (int, error)
	Versions(ctx context.Context) ([]string, error)
	Kind() repository.Kind
}

// RecordService defines single-record operations needed by MCP.
type RecordService interface {
	Create(ctx context.Context, rec project.Project) (*project.Project, error)
	Update(ctx context.Context, id string, rec project.Project) (*project.Project, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req project.ListRequest) (*project.Page, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Datasets DatasetService
	Records  RecordService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "sigades",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
