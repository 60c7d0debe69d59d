package main

import (
	"context"
	"errors"
	"image/color"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"brushkit/api"
	"brushkit/config"
	"brushkit/export"
	"brushkit/favorites"
	"brushkit/preset"
	"brushkit/presetsave"
	"brushkit/resource"
	"brushkit/session"
	"brushkit/thumbnail"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "brushkit",
		Short:        "Brush preset library and raster export service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newExportCommand())
	return root
}

type serveOptions struct {
	configPath string
	dataDir    string
	addr       string
	verbosity  int
}

func (o *serveOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	fs.StringVar(&o.dataDir, "data-dir", "/data", "directory holding presets, the resource index and favorites")
	fs.StringVar(&o.addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	fs.IntVarP(&o.verbosity, "verbosity", "v", -1, "log verbosity (overrides LOG_VERBOSITY)")
}

func newServeCommand() *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the preset library over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(o.configPath, o.dataDir)
			if err != nil {
				return err
			}
			if o.addr != "" {
				cfg.HTTP.Addr = o.addr
			}
			if o.verbosity >= 0 {
				cfg.Log.Verbosity = o.verbosity
			}
			return serve(cmd.Context(), cfg)
		},
	}
	o.addFlags(cmd.Flags())
	return cmd
}

func newLogger(verbosity int) logr.Logger {
	stdr.SetVerbosity(verbosity)
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags))
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.Log.Verbosity)

	res, err := resource.NewServer(cfg.Resources.Dir, cfg.Resources.Index, logger)
	if err != nil {
		return err
	}
	if err := res.LoadAll(); err != nil {
		return err
	}

	fav, err := favorites.NewManager(cfg.Favorites.File, res, cfg.Favorites.Tag)
	if err != nil {
		return err
	}
	res.Subscribe(fav.OnResourceEvent)

	sel := &preset.Selection{}
	if recent := fav.Get().RecentlyUsed; len(recent) > 0 {
		sel.SetCurrentPreset(res.ResourceByName(recent[0]))
	}

	wf := presetsave.NewWorkflow(res, fav, sel, logger)
	sessions := session.NewManager(func() *presetsave.Dialog {
		return presetsave.NewDialog(wf, sel, thumbnail.NewScratchpad(cfg.Thumbnail.Size, color.White))
	})

	router := api.RegisterRoutes(api.Deps{
		Server:    res,
		Favorites: fav,
		Selection: sel,
		Sessions:  sessions,
		Exporter:  export.NewBMPExport(),
		Log:       logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("brushkit listening", "addr", cfg.HTTP.Addr, "presets", len(res.Resources()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(err, "server error")
		return err
	}
	return nil
}
