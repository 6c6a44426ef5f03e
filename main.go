package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moyoez/resume-intake/api"
	"github.com/moyoez/resume-intake/dashboard"
	"github.com/moyoez/resume-intake/intake"
	"github.com/moyoez/resume-intake/notify"
	"github.com/moyoez/resume-intake/share"
	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/transfer"
	"github.com/moyoez/resume-intake/types"
)

func main() {
	flags := tool.SetFlags()

	tool.InitLogger()
	tool.SetLogMode(flags.Log)

	appCfg, err := tool.LoadConfig(flags.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if err := tool.ApplyEnvOverrides(&appCfg, flags.UseEnvPath); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if err := tool.ApplyFlagOverrides(&appCfg, flags); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}

	if flags.Check {
		os.Exit(runCheck(appCfg))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := transfer.NewClient(appCfg, nil)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}

	if len(flags.Files) > 0 {
		if err := runCLI(ctx, appCfg, flags, client); err != nil {
			tool.DefaultLogger.Errorf("%v", err)
			os.Exit(1)
		}
		return
	}

	if err := runServe(ctx, appCfg, client); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
}

func runCheck(cfg types.AppConfig) int {
	res, err := tool.ProbeParser(cfg.ParserBaseURL, 2*time.Second)
	if err != nil {
		tool.DefaultLogger.Errorf("[Check] %v", err)
		return 1
	}
	fmt.Printf("parser %s: icmp=%t tcp=%t reachable=%t\n", res.Host, res.ICMP, res.TCP, res.Reachable)
	if !res.Reachable {
		return 1
	}
	return 0
}

func newController(cfg types.AppConfig, client *transfer.Client, hub types.NotifyHub) (*intake.Controller, *share.CandidateStore) {
	store := share.NewCandidateStore(cfg.SessionTTL, share.ParsePolicy(cfg.IngestPolicy), hub)
	results := intake.NewResultHandler(cfg.ResultMode, store)
	return intake.NewController(client, results, hub, intake.OptionsFromConfig(cfg)), store
}

func runServe(ctx context.Context, cfg types.AppConfig, client *transfer.Client) error {
	hub := notify.NewHub()
	controller, store := newController(cfg, client, notify.Fanout{hub, notify.LogSink{}})

	server := api.NewServer(ctx, api.Deps{
		Config:    cfg,
		Intake:    controller,
		Store:     store,
		Uploader:  client,
		UploadURL: client.UploadURL(),
		Hub:       hub,
	})
	tool.DefaultLogger.Infof("Candidate table available at %s", tool.BuildDashboardURL(tool.FirstLANIPv4(), cfg.Port))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// runCLI uploads the given files once, then prints the candidate table.
func runCLI(ctx context.Context, cfg types.AppConfig, flags types.Config, client *transfer.Client) error {
	view := dashboard.NewView()
	if err := view.ApplyClicks(flags.Sort); err != nil {
		return err
	}

	controller, store := newController(cfg, client, notify.LogSink{})
	for _, path := range flags.Files {
		f, err := tool.PendingFileFromPath(path)
		if err != nil {
			return err
		}
		if !tool.HasAcceptedExtension(f.Name, cfg.AcceptedExtensions) {
			tool.DefaultLogger.Warnf("[Intake] %s is not a %v file, sending anyway", f.Name, cfg.AcceptedExtensions)
		}
		controller.AddFiles(f)
	}

	if _, err := controller.Submit(ctx); err != nil {
		return err
	}

	renderCtx, stopRender := context.WithCancel(ctx)
	var final types.SessionState
	g, gctx := errgroup.WithContext(renderCtx)
	g.Go(func() error {
		defer stopRender()
		s, err := controller.Wait(ctx)
		final = s
		return err
	})
	g.Go(func() error {
		renderProgress(gctx, controller, cfg.ProgressInterval)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)

	if final.Outcome == types.OutcomeFailed {
		return errors.New(final.Error)
	}
	for _, line := range final.Summary {
		fmt.Println(line)
	}
	if final.Redirect != "" {
		tool.DefaultLogger.Debugf("[Intake] Result view redirects to %s", final.Redirect)
	}

	page := dashboard.BuildPage(store.Load(), flags.Query, view, flags.Page, cfg.PageSize)
	return dashboard.Render(os.Stdout, page)
}

func renderProgress(ctx context.Context, controller *intake.Controller, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Millisecond
	}
	ticker := time.NewTicker(interval * 5)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := controller.Session()
			if s.Uploading {
				fmt.Fprintf(os.Stderr, "\rUploading %d files... %3.0f%%", s.Files, s.DisplayProgress)
			}
		}
	}
}
