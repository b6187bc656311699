package service

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rowdybard/banterbox/app/core"
	v1 "github.com/rowdybard/banterbox/app/logic/v1"
	"github.com/rowdybard/banterbox/app/logic/v1/process"
)

type Options struct {
	ConfigPath string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "init api by given config")
}

func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "service",
		Short: "context memory service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func Run(opts *Options) error {
	app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))
	process.NewProcess(app).Start()
	serve(app)

	return nil
}

// NewSweepCommand runs one deep sweep and exits, for manual operations.
func NewSweepCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "delete expired memory rows once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))
			removed, err := v1.NewMaintenanceLogic(context.Background(), app).SweepExpired()
			if err != nil {
				return err
			}
			fmt.Printf("removed %d expired rows\n", removed)
			return nil
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}
