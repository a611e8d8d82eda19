package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deemkeen/postbox/util"
	"github.com/deemkeen/postbox/web"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newDevServerCmd(c *Cli) *cobra.Command {
	var seed bool
	var port int

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Serve an in-memory backend for local development",
		Long: "Serve the REST and chat endpoints the client talks to from memory. " +
			"Nothing is persisted; restart to reset.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				c.conf.Conf.DevPort = port
			}
			if c.conf.Conf.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			backend := web.NewBackend()
			if seed {
				if err := web.SeedDemo(backend); err != nil {
					return fmt.Errorf("seeding demo data: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "demo users alice, bob and carol share the password %q\n", web.DemoPassword)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			util.NewLogger("cli").Infof("dev backend for %s", util.GetNameAndVersion())
			return web.NewServer(c.conf, backend).Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Create demo users and posts")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides devPort)")
	return cmd
}
