package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/lib/signals"
	"github.com/planforge/translator/pkg/translate"
	"github.com/planforge/translator/pkg/translate/sas"
	"github.com/planforge/translator/pkg/version"
)

type options struct {
	task       config.Options
	configFile string
	debug      bool
	version    bool
}

// resolve applies the config file, if any, and lets every flag given on the
// command line take precedence over it.
func (o *options) resolve(flags *pflag.FlagSet) (config.Options, error) {
	if o.configFile == "" {
		return o.task, nil
	}
	resolved, err := config.LoadFile(o.configFile, config.Default())
	if err != nil {
		return o.task, err
	}
	flags.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply(&resolved, o.task)
		}
	})
	return resolved, nil
}

func newOptions() *options {
	return &options{task: config.Default()}
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "translate [flags] DOMAIN TASK",
		Short:        "Translates a lifted planning task into a ground finite-domain task",
		SilenceUsage: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if o.version {
				return nil
			}
			if len(args) != 2 {
				return config.InvalidOptionError{Option: "arguments", Reason: fmt.Sprintf("expected domain and task file, got %d arguments", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.version {
				fmt.Fprint(cmd.OutOrStdout(), version.String())
				fmt.Fprintf(cmd.OutOrStdout(), " Task format: %d\n", sas.FormatVersion)
				return nil
			}

			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			if o.debug {
				logger.SetLevel(logrus.DebugLevel)
			}

			opts, err := o.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			tr, err := translate.New(logger, opts, nil)
			if err != nil {
				return err
			}
			return tr.Run(signals.Context(translate.ExitCritical), args[0], args[1], cmd.OutOrStdout())
		},
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return config.InvalidOptionError{Option: "flags", Reason: err.Error()}
	})

	bindOptions(cmd.Flags(), &o.task)
	cmd.Flags().StringVar(&o.configFile, "config", "", "YAML file with option values keyed by long flag name; flags given on the command line take precedence")
	cmd.Flags().BoolVar(&o.version, "version", false, "displays the translator version")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "use debug log level")
	if err := cmd.Flags().MarkHidden("debug"); err != nil {
		logrus.Panic(err.Error())
	}

	return cmd
}

func main() {
	cmd := newRootCmd(newOptions())
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err != nil {
		logrus.WithField("cause", fmt.Sprintf("%T", errors.Cause(err))).Error(err.Error())
		os.Exit(translate.ExitCode(err))
	}
}
