package lattice

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// NewHTTPHandler adapts a Router to net/http. Each request is wrapped in a
// fresh State and the Router's response is written back to the connection.
func NewHTTPHandler(router *Router, logger *Logger) http.Handler {
	if logger == nil {
		logger = DefaultLogger()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := NewStateForRequest(r)
		res, err := router.Handle(s)
		if err != nil {
			// Router 总是把错误翻译为响应，此处仅兜底
			logger.Error("router returned error", "request_id", s.RequestID(), "err", err)
			res = NewResponse(http.StatusInternalServerError)
		}
		if werr := res.Write(w); werr != nil {
			logger.Error("write response", "request_id", s.RequestID(), "err", werr)
		}
	})
}

// Duration wraps time.Duration so YAML config values can use Go's
// "5s" / "2m" notation; bare integers are taken as nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var n int64
	if err := node.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ServerConfig 服务配置，可从 YAML 文件加载。
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown once the run context is
	// cancelled. Zero means wait indefinitely.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// H2C enables cleartext HTTP/2 support.
	H2C bool `yaml:"h2c"`
}

// LoadServerConfig reads a ServerConfig from a YAML file.
func LoadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &ServerConfig{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Server runs a Router on a net/http server with graceful shutdown.
type Server struct {
	config *ServerConfig
	logger *Logger
	srv    *http.Server
}

// NewServer creates a Server for the given Router.
func NewServer(cfg *ServerConfig, router *Router, logger *Logger) *Server {
	if logger == nil {
		logger = DefaultLogger()
	}
	handler := NewHTTPHandler(router, logger)
	if cfg.H2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	return &Server{
		config: cfg,
		logger: logger,
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout.Std(),
			WriteTimeout: cfg.WriteTimeout.Std(),
			IdleTimeout:  cfg.IdleTimeout.Std(),
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout. It returns the first error other than
// http.ErrServerClosed.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", "addr", s.config.Addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("server shutting down")

		shutdownCtx := context.Background()
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.config.ShutdownTimeout.Std())
			defer cancel()
		}
		return s.srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
