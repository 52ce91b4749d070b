package cmd

import (
	"github.com/huangsam/sitpulse/internal/web"
	"github.com/spf13/cobra"
)

// serveCmd serves the reports as JSON over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reports as JSON over HTTP",
	Long: `Load the tables once and answer report requests over HTTP.

Endpoints:
  GET /api/growth     membership growth and latest counts
  GET /api/sitters    new sitter onboarding
  GET /api/owners     new owner onboarding
  GET /api/health     rolling network health
  GET /api/countries  selectable market filters
  GET /healthz        liveness probe (never authenticated)

Every /api endpoint accepts ?country=. Set --serve-user and --serve-password
(or SITPULSE_SERVE_USER and SITPULSE_SERVE_PASSWORD) to require basic auth.

Examples:
  sitpulse serve --addr :9000
  curl 'localhost:9000/api/health?country=Canada'`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return web.Serve(rootCtx, cfg, cacheManager)
	},
}
