package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mwedajie/portfolio/internal/config"
	"github.com/mwedajie/portfolio/internal/contact"
	"github.com/mwedajie/portfolio/internal/obs"
	"github.com/mwedajie/portfolio/internal/portfolio"
	"github.com/mwedajie/portfolio/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Personal portfolio site with a mailto contact form",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newMailtoCmd(), newCheckContentCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	content, err := portfolio.NewSource(cfg.ContentFile, logger)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	visitors, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open visitor store: %w", err)
	}
	defer visitors.Close()

	srv, err := newServer(cfg, logger, content, visitors)
	if err != nil {
		return err
	}
	return srv.run(ctx)
}

func newMailtoCmd() *cobra.Command {
	var (
		to   string
		form contact.FormState
	)
	cmd := &cobra.Command{
		Use:   "mailto",
		Short: "Print the mailto link the contact form would open",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == "" {
				to = portfolio.Default().Contact.Recipient
			}
			return printMailto(cmd.OutOrStdout(), to, form)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient (defaults to the built-in contact address)")
	cmd.Flags().StringVar(&form.Name, "name", "", "sender name")
	cmd.Flags().StringVar(&form.Email, "email", "", "sender email")
	cmd.Flags().StringVar(&form.Message, "message", "", "message body")
	return cmd
}

// printMailto runs the same submit flow as the web form with stdout as the
// handoff target.
func printMailto(w io.Writer, to string, form contact.FormState) error {
	ctrl := contact.New(to)
	ctrl.UpdateField(contact.FieldName, form.Name)
	ctrl.UpdateField(contact.FieldEmail, form.Email)
	ctrl.UpdateField(contact.FieldMessage, form.Message)

	_, err := ctrl.Submit(contact.HandoffFunc(func(uri string) error {
		_, err := fmt.Fprintln(w, uri)
		return err
	}))
	if err != nil {
		if notes := ctrl.Notifications(); len(notes) > 0 {
			return errors.New(notes[0].Message)
		}
		return err
	}
	return nil
}

func newCheckContentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-content [file]",
		Short: "Validate a portfolio content file (the built-in one when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := portfolio.Default()
			if len(args) == 1 {
				var err error
				if p, err = portfolio.LoadFile(args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s, %d projects, %d certifications, %d skills\n",
				p.Name, len(p.Projects), len(p.Certifications), len(p.Skills.Technical)+len(p.Skills.Soft))
			return nil
		},
	}
}
