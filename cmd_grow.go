package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/o0olele/sctree-go/builder"
	"github.com/o0olele/sctree-go/growth"
)

func newGrowCommand() *cobra.Command {
	var (
		out       string
		objOut    string
		maxCycles int
	)
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree to completion and export its mesh",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}

			start := time.Now()
			g, err := growth.New(params)
			if err != nil {
				return err
			}
			cycles := g.RunToCompletion(maxCycles)
			stats := g.Stats()
			logrus.WithFields(logrus.Fields{
				"cycles":    cycles,
				"state":     stats.State,
				"nodes":     stats.Nodes,
				"triangles": stats.Triangles,
				"elapsed":   time.Since(start),
			}).Info("growth done")
			if !stats.State.Terminal() {
				logrus.WithField("max_cycles", maxCycles).Warn("stopped before the tree finished")
			}

			if out != "" {
				if err := builder.Save(g.Mesh(), out); err != nil {
					return err
				}
				logrus.WithField("file", out).Info("mesh saved")
			}
			if objOut != "" {
				if err := builder.SaveOBJ(g.Mesh(), objOut); err != nil {
					return err
				}
				logrus.WithField("file", objOut).Info("obj saved")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "mesh.bin", "binary mesh output, empty to skip")
	cmd.Flags().StringVar(&objOut, "obj", "", "Wavefront OBJ output")
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 10000, "stop after this many cycles, 0 for no limit")
	return cmd
}
