package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/o0olele/sctree-go/server"
)

func newServeCommand() *cobra.Command {
	var (
		addr   string
		fps    int
		webDir string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Grow a tree live and serve it over HTTP and websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, err := server.NewRunner(params, logrus.WithField("component", "runner"))
			if err != nil {
				return err
			}
			srv := server.New(runner,
				server.WithLogger(logrus.WithField("component", "server")),
				server.WithWebDir(webDir),
				server.WithOutputDir(outDir),
			)

			runErr := make(chan error, 1)
			go func() {
				runErr <- runner.Run(ctx, fps)
			}()

			err = srv.ListenAndServe(ctx, addr)
			stop()
			if rerr := <-runErr; err == nil {
				err = rerr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&fps, "fps", 30, "simulation ticks per second")
	cmd.Flags().StringVar(&webDir, "web", "", "directory of static viewer files")
	cmd.Flags().StringVar(&outDir, "out-dir", "exports", "directory /api/save writes into, empty to disable")
	return cmd
}
