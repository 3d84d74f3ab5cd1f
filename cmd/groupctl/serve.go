package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	groups "github.com/goliatone/go-customer-groups/components/groups"
	"github.com/goliatone/go-customer-groups/components/groups/gorouter"
	"github.com/goliatone/go-customer-groups/components/groups/httpapi"
	"github.com/goliatone/go-customer-groups/pkg/activity"
	"github.com/goliatone/go-customer-groups/pkg/activity/usersink"
)

type serveCmd struct {
	sourceFlags

	Config      string        `name:"config" short:"c" type:"existingfile" env:"GROUPCTL_CONFIG" help:"YAML file with serve settings; flags win."`
	Addr        string        `name:"addr" env:"GROUPCTL_ADDR" help:"Address of the admin page (default :9876)."`
	OpsAddr     string        `name:"ops-addr" env:"GROUPCTL_OPS_ADDR" help:"Address of the metrics, SSE and plain JSON API (default :9877)."`
	BasePath    string        `name:"base-path" env:"GROUPCTL_BASE_PATH" help:"Route prefix of the admin page (default /admin)."`
	RedisAddr   string        `name:"redis-addr" env:"GROUPCTL_REDIS_ADDR" help:"Keep per-viewer state in Redis instead of memory."`
	StateTTL    time.Duration `name:"state-ttl" env:"GROUPCTL_STATE_TTL" help:"Expiry of per-viewer state in Redis."`
	ChartTTL    time.Duration `name:"chart-ttl" env:"GROUPCTL_CHART_TTL" help:"How long rendered charts are cached (default 5m)."`
	DefaultUser string        `name:"default-user" env:"GROUPCTL_DEFAULT_USER" help:"Viewer id used when a request carries none."`
	Expand      []int         `name:"expand" help:"Group ids expanded for new viewers."`
	Activity    bool          `name:"activity" env:"GROUPCTL_ACTIVITY" help:"Log viewer actions as activity records."`
	Templates   string        `name:"templates" type:"existingdir" env:"GROUPCTL_TEMPLATES" help:"Directory with a templates/ folder overriding the bundled page."`
}

// serveFile mirrors the serve flags for --config.
type serveFile struct {
	Addr        string        `yaml:"addr"`
	OpsAddr     string        `yaml:"ops_addr"`
	BasePath    string        `yaml:"base_path"`
	Dataset     string        `yaml:"dataset"`
	DSN         string        `yaml:"dsn"`
	APIURL      string        `yaml:"api_url"`
	APIKey      string        `yaml:"api_key"`
	RedisAddr   string        `yaml:"redis_addr"`
	StateTTL    time.Duration `yaml:"state_ttl"`
	ChartTTL    time.Duration `yaml:"chart_ttl"`
	DefaultUser string        `yaml:"default_user"`
	Expand      []int         `yaml:"expand"`
	Activity    bool          `yaml:"activity"`
	Templates   string        `yaml:"templates"`
}

func (c *serveCmd) applyConfig() error {
	if c.Config != "" {
		raw, err := os.ReadFile(c.Config)
		if err != nil {
			return fail("read config: %w", err)
		}
		var file serveFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return fail("parse config %s: %w", c.Config, err)
		}
		setString(&c.Addr, file.Addr)
		setString(&c.OpsAddr, file.OpsAddr)
		setString(&c.BasePath, file.BasePath)
		setString(&c.Dataset, file.Dataset)
		setString(&c.DSN, file.DSN)
		setString(&c.APIURL, file.APIURL)
		setString(&c.APIKey, file.APIKey)
		setString(&c.RedisAddr, file.RedisAddr)
		setString(&c.DefaultUser, file.DefaultUser)
		setString(&c.Templates, file.Templates)
		if c.StateTTL == 0 {
			c.StateTTL = file.StateTTL
		}
		if c.ChartTTL == 0 {
			c.ChartTTL = file.ChartTTL
		}
		if len(c.Expand) == 0 {
			c.Expand = file.Expand
		}
		c.Activity = c.Activity || file.Activity
	}
	setString(&c.Addr, ":9876")
	setString(&c.OpsAddr, ":9877")
	setString(&c.BasePath, "/admin")
	if c.ChartTTL == 0 {
		c.ChartTTL = 5 * time.Minute
	}
	return nil
}

func setString(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func (c *serveCmd) Run(rt *runtime, ctx context.Context) error {
	if err := c.applyConfig(); err != nil {
		return err
	}
	logger := rt.logger.With("component", "serve")

	source, closeSource, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := groups.NewPrometheusTelemetry(registry)
	if err != nil {
		return err
	}
	telemetry := groups.MultiTelemetry{metrics, groups.LogTelemetry{Logger: logger}}

	broadcast := groups.NewBroadcastHook()
	opts := groups.Options{
		Source:          source,
		RefreshHook:     broadcast,
		Telemetry:       telemetry,
		Logger:          logger,
		InitialExpanded: c.Expand,
	}
	if c.Activity {
		opts.ActivityHooks = activity.Hooks{usersink.Hook{Sink: logSink{logger: logger.With("channel", activity.DefaultChannel)}}}
		opts.ActivityConfig = activity.Config{Enabled: true}
	}
	if c.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		defer func() { _ = client.Close() }()
		if err := client.Ping(ctx).Err(); err != nil {
			return fail("connect redis %s: %w", c.RedisAddr, err)
		}
		opts.StateStore = groups.NewRedisViewStateStore(client, groups.RedisStoreOptions{TTL: c.StateTTL})
	}
	service := groups.NewService(opts)

	report, err := service.Reload(ctx)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "dataset loaded", "source", c.describe(), "excluded", len(report.Issues))

	renderer, err := groups.NewTemplateRendererWithOverrides(c.Templates)
	if err != nil {
		return err
	}
	chartCache := groups.NewChartCache(c.ChartTTL)
	controller := groups.NewController(groups.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Chart:    groups.NewDiscountChart(chartCache),
	})
	executor := httpapi.NewServiceExecutor(service, chartCache, telemetry)

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:         server.Router(),
		Controller:     controller,
		API:            executor,
		Broadcast:      broadcast,
		BasePath:       c.BasePath,
		ViewerResolver: c.viewerResolver(),
	}); err != nil {
		return err
	}

	ops := &http.Server{Addr: c.OpsAddr, Handler: c.opsMux(registry, executor, broadcast), ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "admin page ready", "url", "http://localhost"+c.Addr+c.BasePath+"/customer-groups")
		return server.Serve(c.Addr)
	})
	g.Go(func() error {
		logger.InfoContext(gctx, "ops endpoints ready", "addr", c.OpsAddr)
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if c.Dataset != "" {
		watcher := groups.NewDatasetWatcher(c.Dataset, service,
			groups.WithWatchLogger(logger),
			groups.WithReloadCallback(func(_ groups.BuildReport, err error) {
				if err == nil {
					chartCache.Purge()
				}
			}),
		)
		g.Go(func() error { return watcher.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("admin server shutdown", "error", err)
		}
		return ops.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("stopped")
	return nil
}

func (c *serveCmd) viewerResolver() gorouter.ViewerResolver {
	return func(ctx router.Context) groups.ViewerContext {
		viewer := gorouter.DefaultViewerResolver(ctx)
		if viewer.UserID == "" {
			viewer.UserID = c.DefaultUser
		}
		return viewer
	}
}

func (c *serveCmd) opsMux(registry *prometheus.Registry, executor httpapi.Executor, broadcast *groups.BroadcastHook) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("GET /events", broadcast.ServeSSE)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	api := &httpapi.Handlers{API: executor, Viewer: func(r *http.Request) groups.ViewerContext {
		viewer := httpapi.DefaultViewer(r)
		if viewer.UserID == "" {
			viewer.UserID = c.DefaultUser
		}
		return viewer
	}}
	api.Mount(mux, "/api/customer-groups")
	return mux
}

// logSink writes activity records to the structured log.
type logSink struct {
	logger *slog.Logger
}

func (s logSink) Log(ctx context.Context, record types.ActivityRecord) error {
	attrs := []any{"verb", record.Verb, "object_type", record.ObjectType, "object_id", record.ObjectID}
	for key, value := range record.Data {
		attrs = append(attrs, strings.ReplaceAll(key, ".", "_"), fmt.Sprint(value))
	}
	s.logger.InfoContext(ctx, "activity", attrs...)
	return nil
}
