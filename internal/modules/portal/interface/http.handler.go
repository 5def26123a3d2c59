package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/application/usecase"
	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/modules/portal/infrastructure"
	"portalConsole/internal/shared/auth"
	"portalConsole/internal/shared/httputil"
)

const connectTimeout = 10 * time.Second

// PortalFactory builds the portal transport for one upgrade request,
// carrying the browser's credentials.
type PortalFactory func(r *http.Request) (port.Portal, error)

// ViewSocketOptions tunes the view sockets. Zero values select defaults.
type ViewSocketOptions struct {
	SendBuffer     int
	ReadLimit      int64
	CommandTimeout time.Duration
	ConfirmTimeout time.Duration
	Debounce       time.Duration
	PageSize       int
	EnvelopeHost   string
	Version        string
	TokenCookie    string
	AllowedOrigins []string
}

// ViewSocketDeps are the collaborators shared by every view socket.
type ViewSocketDeps struct {
	Hub      *infrastructure.Hub
	Connect  *usecase.ConnectViewUseCase
	Views    *usecase.ViewRegistry
	Portals  PortalFactory
	Observer port.ListObserver
}

var connectErrors = httputil.NewErrorMapper().
	WithMapping(usecase.ErrMissingEntity, http.StatusBadRequest, "missing entity").
	WithMapping(usecase.ErrUnknownEntity, http.StatusNotFound, "entity is not integrated").
	WithMapping(usecase.ErrMissingToken, http.StatusBadRequest, "missing token").
	WithMapping(auth.ErrMissingToken, http.StatusBadRequest, "missing token").
	WithMapping(auth.ErrInvalidToken, http.StatusUnauthorized, "invalid token").
	WithDefault(http.StatusInternalServerError, "unable to open view")

func newUpgrader(allowed []string) websocket.Upgrader {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if trimmed := strings.TrimRight(strings.TrimSpace(o), "/"); trimmed != "" {
			origins[trimmed] = struct{}{}
		}
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			_, ok := origins[strings.TrimRight(r.Header.Get("Origin"), "/")]
			return ok
		},
	}
}

// requestToken reads the token from the path, then the Authorization
// header, the token query and the access token cookie.
func requestToken(c echo.Context, cookieName string) string {
	if token := strings.TrimSpace(c.Param("token")); token != "" {
		return token
	}
	return auth.ExtractToken(c.Request(), "token", cookieName)
}

// NewViewWebsocketHandler exposes /ws/views/:entity[/:token]. Each socket owns
// one list view; the controller's state is pushed on <entity>.list.
func NewViewWebsocketHandler(deps ViewSocketDeps, opts ViewSocketOptions) echo.HandlerFunc {
	upgrader := newUpgrader(opts.AllowedOrigins)

	return func(c echo.Context) error {
		entity := strings.TrimSpace(c.Param("entity"))
		token := requestToken(c, opts.TokenCookie)
		hostOverride := strings.TrimSpace(c.QueryParam("hostId"))
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		peerIP := c.RealIP()

		ctx, cancel := context.WithTimeout(c.Request().Context(), connectTimeout)
		defer cancel()

		output, err := deps.Connect.Execute(ctx, usecase.ConnectViewInput{Token: token, Entity: entity, HostID: hostOverride})
		if err != nil {
			httpErr := connectErrors.HTTPError(err)
			slog.Warn("ws view connect rejected", slog.String("entity", entity), slog.Int("status", httpErr.Code), slog.String("ip", peerIP), slog.String("reqID", requestID), slog.Any("error", err))
			return httpErr
		}

		portal, err := deps.Portals(c.Request())
		if err != nil {
			slog.Error("ws view portal client failed", slog.String("entity", output.Entry.Entity), slog.Any("error", err))
			return echo.NewHTTPError(http.StatusInternalServerError, "unable to open view")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws view upgrade failed", slog.String("entity", output.Entry.Entity), slog.String("ip", peerIP), slog.String("reqID", requestID), slog.Any("error", err))
			return err
		}

		session := output.Session
		entityName := output.Entry.Entity
		viewID := uuid.NewString()
		info := infrastructure.ClientInfo{
			UserID:    session.UserID,
			SessionID: session.ID,
			HostID:    session.HostID,
			ViewID:    viewID,
			Entity:    entityName,
		}

		var presenter *infrastructure.WebsocketPresenter
		client := infrastructure.NewClient(deps.Hub, conn, info, opts.SendBuffer, func(_ context.Context, _ *infrastructure.Client, cmd infrastructure.Command) {
			presenter.PushError(cmd.Action, usecase.ErrUnsupportedAction)
		})
		client.SetReadLimit(opts.ReadLimit)
		client.Commands().SetTimeout(opts.CommandTimeout)
		presenter = infrastructure.NewWebsocketPresenter(client, entityName, viewID, session.HostID, opts.ConfirmTimeout)

		view := output.Entry.Open(session, portal, usecase.ControllerOptions{
			ViewID:    viewID,
			Debounce:  opts.Debounce,
			PageSize:  opts.PageSize,
			Host:      opts.EnvelopeHost,
			Version:   opts.Version,
			Path:      strings.TrimSpace(c.QueryParam("path")),
			Confirmer: presenter,
			Notifier:  presenter,
			Navigator: presenter,
			Observer:  deps.Observer,
			OnMutated: func(entity, hostID string) {
				deps.Views.RefreshEntity(context.Background(), entity, hostID, viewID)
			},
		})
		unwatch := view.Watch(presenter.PushState)
		deps.Views.Add(session.ID, view)

		registerViewCommands(client, view, presenter)
		client.AddCloseHook(func(*infrastructure.Client) {
			unwatch()
			deps.Views.Remove(session.ID, viewID)
			slog.Info("ws view closed", slog.String("entity", entityName), slog.String("viewId", viewID), slog.String("sessionId", session.ID))
		})
		deps.Hub.AttachClient(client, nil)

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(domain.BuildSystemMessage(domain.ActionConnected,
			map[string]string{"userId": session.UserID, "sessionId": session.ID, "viewId": viewID, "hostId": session.HostID},
			map[string]any{
				"entity":   entityName,
				"viewId":   viewID,
				"hostId":   session.HostID,
				"roles":    session.Roles,
				"topics":   viewTopics(entityName),
				"commands": viewCommandNames,
				"catalog":  output.Entry,
			},
			time.Now(),
		))
		slog.Info("ws view connected", slog.String("entity", entityName), slog.String("viewId", viewID), slog.String("userId", session.UserID), slog.String("sessionId", session.ID), slog.String("hostId", session.HostID), slog.String("ip", peerIP), slog.String("reqID", requestID))
		return nil
	}
}

var viewCommandNames = []string{
	"mount", "set_filter", "set_filters", "set_global_filter", "set_sorting",
	"set_pagination", "set_host", "refresh", "delete", "update", "submit",
	"confirm", "ping",
}

// registerViewCommands binds the socket commands to view. Commands that wait
// on the portal or on the user run async so confirm replies keep flowing.
func registerViewCommands(client *infrastructure.Client, view usecase.View, presenter *infrastructure.WebsocketPresenter) {
	commands := client.Commands()

	commands.Register("mount", viewCommand(view, presenter, "mount", func(_ context.Context, cmd domain.MountCommand) error {
		if cmd.PageSize > 0 {
			view.SetPagination(domain.Pagination{PageSize: cmd.PageSize})
		}
		return view.Mount(cmd.Navigation)
	}))
	commands.Register("set_filter", viewCommand(view, presenter, "set_filter", func(_ context.Context, cmd domain.SetFilterCommand) error {
		if strings.TrimSpace(cmd.ID) == "" {
			return errInvalidPayload
		}
		view.SetColumnFilter(cmd.ID, cmd.Value)
		return nil
	}))
	commands.Register("set_filters", viewCommand(view, presenter, "set_filters", func(_ context.Context, cmd domain.SetFiltersCommand) error {
		view.SetColumnFilters(cmd.Columns)
		return nil
	}))
	commands.Register("set_global_filter", viewCommand(view, presenter, "set_global_filter", func(_ context.Context, cmd domain.SetGlobalFilterCommand) error {
		view.SetGlobalFilter(cmd.Value)
		return nil
	}))
	commands.Register("set_sorting", viewCommand(view, presenter, "set_sorting", func(_ context.Context, cmd domain.SetSortingCommand) error {
		view.SetSorting(cmd.Sorting)
		return nil
	}))
	commands.Register("set_pagination", viewCommand(view, presenter, "set_pagination", func(_ context.Context, cmd domain.SetPaginationCommand) error {
		view.SetPagination(domain.Pagination{PageIndex: cmd.PageIndex, PageSize: cmd.PageSize})
		return nil
	}))
	commands.Register("set_host", viewCommand(view, presenter, "set_host", func(_ context.Context, cmd domain.SetHostCommand) error {
		client.SetHost(cmd.HostID)
		presenter.SetHost(cmd.HostID)
		view.SetHost(cmd.HostID)
		return nil
	}))
	commands.Register("refresh", viewCommand(view, presenter, "refresh", func(ctx context.Context, _ struct{}) error {
		return view.Refresh(ctx)
	}))
	commands.Register("confirm", viewCommand(view, presenter, "confirm", func(_ context.Context, cmd domain.ConfirmReply) error {
		presenter.Resolve(cmd.RequestID, cmd.Accepted)
		return nil
	}))

	commands.RegisterAsync("delete", viewCommand(view, presenter, "delete", func(ctx context.Context, cmd domain.RowCommand) error {
		if len(cmd.Row) == 0 {
			return errInvalidPayload
		}
		return view.DeleteJSON(ctx, cmd.Row)
	}))
	commands.RegisterAsync("update", viewCommand(view, presenter, "update", func(ctx context.Context, cmd domain.RowCommand) error {
		if len(cmd.Row) == 0 {
			return errInvalidPayload
		}
		return view.UpdateJSON(ctx, cmd.Row, cmd.Path)
	}))
	commands.RegisterAsync("submit", viewCommand(view, presenter, "submit", func(ctx context.Context, cmd domain.SubmitCommand) error {
		if len(cmd.Data) == 0 {
			return errInvalidPayload
		}
		return view.SubmitJSON(ctx, cmd.Mode, cmd.Data)
	}))
}
