package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/polasekp/strats/internal/app"
	"github.com/polasekp/strats/internal/config"
	"github.com/polasekp/strats/internal/core/services"
)

// Modes:
//
//	strats serve              run the HTTP server (default)
//	strats import [flags]     run one import pass and exit
//	strats stats              print the week/year/season tables and exit
func main() {
	// Loading environment
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Create app
	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	mode := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		mode = args[0]
		args = args[1:]
	}

	switch mode {
	case "serve":
		serve(application)
	case "import":
		runImport(ctx, application, cfg, args)
	case "stats":
		printStats(ctx, application)
	default:
		log.Fatalf("Unknown mode %q, want serve, import or stats", mode)
	}
}

func serve(application *app.App) {
	go func() {
		if err := application.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := application.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop app: %v", err)
	}
}

func runImport(ctx context.Context, application *app.App, cfg *config.Container, args []string) {
	flags := flag.NewFlagSet("import", flag.ExitOnError)
	limit := flags.Int("limit", cfg.Import.Limit, "max records per run")
	fast := flags.Bool("fast", true, "skip per-activity detail fetch")
	update := flags.Bool("update", false, "re-import records that already exist")
	after := flags.String("after", "", "window start (YYYY-MM-DD)")
	before := flags.String("before", "", "window end (YYYY-MM-DD)")
	if err := flags.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	opts := services.ImportOptions{
		Limit:         *limit,
		Fast:          *fast,
		PerformUpdate: *update,
	}
	opts.After = parseDateFlag(*after)
	opts.Before = parseDateFlag(*before)

	result, err := application.ImportService.Import(ctx, opts)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("created=%d updated=%d skipped=%d gear_created=%d\n",
		result.Created, result.Updated, result.Skipped, result.GearCreated)

	if err := application.Stop(ctx); err != nil {
		log.Fatalf("Failed to stop app: %v", err)
	}
}

func printStats(ctx context.Context, application *app.App) {
	for _, compute := range []func(context.Context) (*services.PeriodStats, error){
		application.StatsService.WeekStats,
		application.StatsService.YearStats,
		application.StatsService.SeasonStats,
	} {
		stats, err := compute(ctx)
		if err != nil {
			log.Fatalf("Failed to compute stats: %v", err)
		}
		fmt.Println(services.RenderPeriodStats(stats))
	}

	if err := application.Stop(ctx); err != nil {
		log.Fatalf("Failed to stop app: %v", err)
	}
}

func parseDateFlag(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		log.Fatalf("Invalid date %q, want YYYY-MM-DD", value)
	}
	return &t
}
