package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/oaiiae/contacts-api/datastores"
	"github.com/oaiiae/contacts-api/handlers"
	"github.com/oaiiae/contacts-api/router"
)

type ServerOptions struct {
	Host              string        `short:"H" doc:"host to listen on"                    default:""`
	Port              string        `short:"p" doc:"port to listen on"                    default:"8888"`
	ReadHeaderTimeout time.Duration `          doc:"time allowed to read request headers" default:"15s"`
}

func NewServer(options *ServerOptions, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              options.Host + ":" + options.Port,
		ReadHeaderTimeout: options.ReadHeaderTimeout,
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

type RouterOptions struct {
	EndpointsPrefix string `doc:"mount endpoints at a prefix" default:"/api"`
}

// Pinger is implemented by stores that can lose their backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	options *RouterOptions,
	title string,
	version string,
	revision string,
	created string,
	store datastores.ContactsStore,
	logger *slog.Logger,
) http.Handler {
	buildinfoMetric := joinQuote("build_info{goversion=", runtime.Version(),
		",title=", title,
		",version=", version,
		",revision=", revision,
		",created=", created,
		"} 1\n")
	metriks := metrics.NewSet()
	metriks.NewGauge("contacts", func() float64 {
		contacts, err := store.List(context.Background(), "")
		if err != nil {
			return 0
		}
		return float64(len(contacts))
	})
	return router.New(title, version,
		readiness(store, logger),
		func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, buildinfoMetric)
			metriks.WritePrometheus(w)
			metrics.WriteProcessMetrics(w)
		},
		router.OptUseMiddleware(
			ctxlog{}.loggerMiddleware(logger),
			meterRequests(metriks),
			ctxlog{}.recoverMiddleware(logger),
		),
		router.OptGroup(options.EndpointsPrefix,
			router.OptGroup("/contacts", router.OptAutoRegister(&handlers.Contacts{
				Store:        store,
				ErrorHandler: ctxlog{}.errorHandler(logger),
			})),
		),
	)
}

// readiness answers [http.StatusServiceUnavailable] while store fails to ping.
func readiness(store datastores.ContactsStore, logger *slog.Logger) http.HandlerFunc {
	pinger, ok := store.(Pinger)
	if !ok {
		return func(http.ResponseWriter, *http.Request) {}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second) //nolint: mnd // arbitrary
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "datastore not ready", slog.Any("err", err))
			http.Error(w, "datastore not ready", http.StatusServiceUnavailable)
		}
	}
}

// ctxlog is a [context.Context] key and acts as a virtual package for operations related to it.
type ctxlog struct{}

// loggerMiddleware returns a middleware that sets a [slog.Logger] in
// the [context.Context] and logs the request after it has terminated.
// Requests without an X-Request-Id header get one generated.
func (key ctxlog) loggerMiddleware(parent *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		requestID := ctx.Header("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.SetHeader("X-Request-Id", requestID)
		logger := parent.With("x-request-id", requestID)

		start := time.Now()
		next(huma.WithValue(ctx, key, logger.WithGroup("op").With("id", ctx.Operation().OperationID)))

		logger.LogAttrs(context.Background(), slog.LevelInfo,
			joinSpace(ctx.Operation().Method, ctx.Operation().Path, ctx.Version().Proto),
			slog.String("from", ctx.RemoteAddr()),
			slog.String("ref", ctx.Header("Referer")),
			slog.String("ua", ctx.Header("User-Agent")),
			slog.Int("status", ctx.Status()),
			slog.Duration("dur", time.Since(start)),
		)
	}
}

// from returns the request logger set by loggerMiddleware, or fallback.
func (key ctxlog) from(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(key).(*slog.Logger); ok {
		return logger
	}
	return fallback
}

// recoverMiddleware answers [http.StatusInternalServerError] when the
// operation panics, and logs the recovered value.
func (key ctxlog) recoverMiddleware(fallback *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			if v := recover(); v != nil {
				key.from(ctx.Context(), fallback).LogAttrs(context.Background(), slog.LevelError,
					"panic occurred", slog.Any("recovered", v))
				ctx.SetStatus(http.StatusInternalServerError)
			}
		}()
		next(ctx)
	}
}

// errorHandler logs operation errors with the request logger.
// Errors carrying an HTTP status log at info for 3xx, warn for 4xx, error otherwise.
func (key ctxlog) errorHandler(fallback *slog.Logger) func(context.Context, error) {
	return func(ctx context.Context, err error) {
		level, attrs := slog.LevelError, []slog.Attr{slog.Any("err", err)}
		if statusErr := huma.StatusError(nil); errors.As(err, &statusErr) {
			status := statusErr.GetStatus()
			switch {
			case status < http.StatusBadRequest:
				level = slog.LevelInfo
			case status < http.StatusInternalServerError:
				level = slog.LevelWarn
			}
			attrs = append(attrs, slog.Int("status", status))
		}
		key.from(ctx, fallback).LogAttrs(context.Background(), level, "error occurred", attrs...)
	}
}

// meterRequests counts and times requests per operation and response status.
func meterRequests(set *metrics.Set) func(huma.Context, func(huma.Context)) {
	buckets := metrics.ExponentialBuckets(1e-3, 5, 6) //nolint: mnd // arbitrary

	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		next(ctx)

		op := ctx.Operation()
		labels := joinQuote("{method=", op.Method, ",path=", op.Path, ",status=", strconv.Itoa(ctx.Status()), "}")
		set.GetOrCreateCounter("http_requests_total" + labels).Inc()
		set.GetOrCreatePrometheusHistogramExt("http_request_duration_seconds"+labels, buckets).UpdateDuration(start)
	}
}

// joinQuote is [strings.Join] with " as separator.
func joinQuote(elems ...string) string { return strings.Join(elems, `"`) }

// joinSpace is [strings.Join] with space as separator.
func joinSpace(elems ...string) string { return strings.Join(elems, ` `) }
