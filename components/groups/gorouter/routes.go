package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	groups "github.com/goliatone/go-customer-groups/components/groups"
	"github.com/goliatone/go-customer-groups/components/groups/commands"
	"github.com/goliatone/go-customer-groups/components/groups/httpapi"
)

// ViewerResolver converts a router.Context into a groups.ViewerContext.
type ViewerResolver func(router.Context) groups.ViewerContext

// Config wires go-router with the customer group controller, API and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *groups.Controller
	API            httpapi.Executor
	Broadcast      *groups.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths of the customer group endpoints.
type RouteConfig struct {
	HTML        string
	Rows        string
	Stats       string
	Expand      string
	Collapse    string
	Toggle      string
	ExpandAll   string
	CollapseAll string
	Filter      string
	Columns     string
	Reload      string
	WebSocket   string
}

// Register mounts the tree page, JSON API and refresh WebSocket on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	resolver := cfg.ViewerResolver
	if resolver == nil {
		resolver = DefaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), resolver(ctx), &buf); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, resolver, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, resolver, routes.WebSocket)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	rows := func(ctx router.Context) error {
		view, err := api.Rows(ctx.Context(), resolver(ctx))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, view)
	}

	r.Get(routes.Rows, router.WrapHandler(rows))

	r.Get(routes.Stats, router.WrapHandler(func(ctx router.Context) error {
		stats, err := api.Stats(ctx.Context())
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, stats)
	}))

	expansion := func(action commands.ExpansionAction, byID bool) router.HandlerFunc {
		return router.WrapHandler(func(ctx router.Context) error {
			input := commands.ExpansionInput{Viewer: resolver(ctx), Action: action}
			if byID {
				id, err := httpapi.ParseGroupID(ctx.Param("id"))
				if err != nil {
					return respondError(ctx, http.StatusBadRequest, err)
				}
				input.GroupID = id
			}
			if err := api.Expansion(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return rows(ctx)
		})
	}
	r.Post(routes.Expand, expansion(commands.ActionExpand, true))
	r.Post(routes.Collapse, expansion(commands.ActionCollapse, true))
	r.Post(routes.Toggle, expansion(commands.ActionToggle, true))
	r.Post(routes.ExpandAll, expansion(commands.ActionExpandAll, false))
	r.Post(routes.CollapseAll, expansion(commands.ActionCollapseAll, false))

	r.Post(routes.Filter, router.WrapHandler(func(ctx router.Context) error {
		var payload groups.FilterInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Filter(ctx.Context(), commands.SetFilterInput{Viewer: resolver(ctx), Filter: payload}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return rows(ctx)
	}))

	r.Post(routes.Columns, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.ColumnsPayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Columns(ctx.Context(), commands.SetColumnsInput{Viewer: resolver(ctx), Columns: payload.Columns}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return rows(ctx)
	}))

	r.Post(routes.Reload, router.WrapHandler(func(ctx router.Context) error {
		input := commands.ReloadDatasetInput{Strict: ctx.Query("strict") == "true"}
		if err := api.Reload(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reloaded"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *groups.BroadcastHook, resolver ViewerResolver, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.SubscribeViewer(subscriberID(ws, resolver))
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// subscriberID scopes a live connection to ?user= or the resolved viewer.
func subscriberID(ctx router.Context, resolver ViewerResolver) string {
	if user := strings.TrimSpace(ctx.Query("user")); user != "" {
		return user
	}
	return resolver(ctx).UserID
}

// DefaultViewerResolver reads the user id from locals or the X-User-ID header.
func DefaultViewerResolver(ctx router.Context) groups.ViewerContext {
	var viewer groups.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if viewer.UserID == "" {
		viewer.UserID = strings.TrimSpace(ctx.Header("X-User-ID"))
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return httpapi.ParseAcceptLanguage(ctx.Header("Accept-Language"))
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	defaults := RouteConfig{
		HTML:        "/customer-groups",
		Rows:        "/customer-groups/_rows",
		Stats:       "/customer-groups/_stats",
		Expand:      "/customer-groups/:id/expand",
		Collapse:    "/customer-groups/:id/collapse",
		Toggle:      "/customer-groups/:id/toggle",
		ExpandAll:   "/customer-groups/expand-all",
		CollapseAll: "/customer-groups/collapse-all",
		Filter:      "/customer-groups/filter",
		Columns:     "/customer-groups/columns",
		Reload:      "/customer-groups/reload",
		WebSocket:   "/customer-groups/ws",
	}
	fill := func(value *string, fallback string) {
		if *value == "" {
			*value = fallback
		}
	}
	fill(&routes.HTML, defaults.HTML)
	fill(&routes.Rows, defaults.Rows)
	fill(&routes.Stats, defaults.Stats)
	fill(&routes.Expand, defaults.Expand)
	fill(&routes.Collapse, defaults.Collapse)
	fill(&routes.Toggle, defaults.Toggle)
	fill(&routes.ExpandAll, defaults.ExpandAll)
	fill(&routes.CollapseAll, defaults.CollapseAll)
	fill(&routes.Filter, defaults.Filter)
	fill(&routes.Columns, defaults.Columns)
	fill(&routes.Reload, defaults.Reload)
	fill(&routes.WebSocket, defaults.WebSocket)
	return routes
}
