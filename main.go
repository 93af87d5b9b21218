package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/oaiiae/contacts-api/cli/api"
	"github.com/oaiiae/contacts-api/cli/datastore"
	"github.com/oaiiae/contacts-api/cli/logger"
)

//nolint: gochecknoglobals // set at build time
var (
	title    = "Contacts API"
	version  = "dev"
	revision = ""
	created  = ""
)

// Options for the CLI. Pass flags such as `--server.port` or set env vars such as `SERVICE_SERVER_PORT`.
type Options struct {
	Server    api.ServerOptions
	Router    api.RouterOptions
	Logger    logger.Options
	Datastore datastore.Options
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		logger := logger.New(&options.Logger)

		var (
			srv   *http.Server
			store *datastore.Store
			ready = make(chan struct{})
		)
		hooks.OnStart(func() {
			var err error
			store, err = datastore.Open(context.Background(), &options.Datastore, logger)
			if err != nil {
				logger.Error("could not open the datastore", "err", err)
				os.Exit(1)
			}
			srv = api.NewServer(&options.Server,
				api.NewRouter(&options.Router, title, version, revision, created, store, logger),
				logger,
			)
			close(ready)

			logger.Info("server listening", "addr", srv.Addr)
			err = srv.ListenAndServe()
			if err != http.ErrServerClosed {
				logger.Error("failed to listen and serve", "err", err)
				os.Exit(1)
			}
			logger.Info("server closed")
		})
		hooks.OnStop(func() {
			<-ready
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := srv.Shutdown(ctx)
			if err != nil {
				logger.Warn("could not shutdown the server", "err", err)
			}
			err = store.Close()
			if err != nil {
				logger.Warn("could not close the datastore", "err", err)
			}
		})
	})

	cli.Root().Use = "contacts-api"
	cli.Root().Version = version
	cli.Root().AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import contacts from a YAML file into the datastore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
				var n int
				n, err = datastore.Import(cmd.Context(), &options.Datastore, args[0], logger.New(&options.Logger))
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "imported %d contacts from %s\n", n, args[0])
				}
			})(cmd, args)
			return err
		},
	})
	cli.Run()
}
