package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blimu-dev/fluentnamer/internal/cli"
	"github.com/blimu-dev/fluentnamer/pkg/config"
)

func main() {
	var verbose bool
	log := cli.NewLogger(os.Stderr, false)

	root := &cobra.Command{
		Use:           "fluentnamer",
		Short:         "Normalize code models built from OpenAPI and Swagger documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = cli.NewLogger(os.Stderr, verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every pass and decision")

	root.AddCommand(newTransformCmd(&log))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newReportCmd(&log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("fluentnamer failed")
		stop()
		os.Exit(1)
	}
}

func newTransformCmd(log *zerolog.Logger) *cobra.Command {
	var configPath string
	var singleModel string
	var dump bool
	var fallback cli.FallbackParams
	overrides := config.Transform{}

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform code models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunTransform(cmd.Context(), cli.RunTransformParams{
				ConfigPath:  configPath,
				SingleModel: singleModel,
				Overrides:   overrides,
				Dump:        dump,
				Fallback:    fallback,
			}, *log)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to fluentnamer.yaml config")
	cmd.Flags().StringVar(&singleModel, "model", "", "Transform only the named model from config")
	cmd.Flags().BoolVar(&dump, "dump", false, "Write the model after every stage to a temporary directory")
	// Fallback single-model flags
	cmd.Flags().StringVar(&fallback.Input, "input", "", "OpenAPI/Swagger document or code model (yaml/json)")
	cmd.Flags().StringVar(&fallback.InputFormat, "input-format", "", "Input format: openapi or codemodel (detected when empty)")
	cmd.Flags().StringVarP(&fallback.Output, "output", "o", "", "Output code model file")
	cmd.Flags().StringSliceVar(&fallback.Outputs, "outputs", nil, "Output types (yaml, json, report)")
	cmd.Flags().StringVar(&fallback.ClientName, "client-name", "", "Client name of the code model")
	addTransformFlags(cmd, &overrides)

	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI/Swagger document or a code model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Document to validate (yaml/json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newReportCmd(log *zerolog.Logger) *cobra.Command {
	var p cli.RunReportParams
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print what the transformation would change, without writing outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunReport(cmd.Context(), p, cmd.OutOrStdout(), *log)
		},
	}
	cmd.Flags().StringVar(&p.Input, "input", "", "OpenAPI/Swagger document or code model (yaml/json)")
	cmd.Flags().StringVar(&p.InputFormat, "input-format", "", "Input format: openapi or codemodel (detected when empty)")
	cmd.Flags().StringVar(&p.ClientName, "client-name", "", "Client name of the code model")
	addTransformFlags(cmd, &p.Overrides)
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
