package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/brettbedarf/dirshell/internal/util"
	"github.com/brettbedarf/dirshell/shell"
	"github.com/brettbedarf/dirshell/sinks"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

// MaxKeysBody bounds a POST /keys body
const MaxKeysBody = 4 << 10

// KeysResponse is the body of a POST /keys reply
type KeysResponse struct {
	Output string `json:"output"`
	Cwd    string `json:"cwd"`
}

// TreeResponse is the body of a GET /tree reply
type TreeResponse struct {
	Lines []string `json:"lines"`
}

// HTTPConsole exposes a shell session over HTTP. Each request submits whole
// lines that run as one unit, so they never mix with keys typed on the
// terminal of the same session.
type HTTPConsole struct {
	sh     *shell.Shell
	e      *echo.Echo
	logger util.Logger
}

// NewHTTPConsole builds the router for sh.
// When tokenHash is set every route but /healthz requires
// "Authorization: Bearer <token>" matching it; see [HashToken].
func NewHTTPConsole(sh *shell.Shell, tokenHash string) *HTTPConsole {
	h := &HTTPConsole{
		sh:     sh,
		logger: util.GetLogger("HTTPConsole").With().Str("session", sh.ID()).Logger(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(h.requestLogger())
	if tokenHash != "" {
		e.Use(tokenAuth([]byte(tokenHash)))
	}

	e.GET("/healthz", h.HandleHealth)
	e.GET("/tree", h.HandleTree)
	e.POST("/keys", h.HandleKeys, middleware.BodyLimit("4K"))

	h.e = e
	return h
}

// Handler returns the console as an http.Handler
func (h *HTTPConsole) Handler() http.Handler {
	return h.e
}

// Start listens on addr and blocks until the server stops. It returns nil
// after Shutdown.
func (h *HTTPConsole) Start(addr string) error {
	h.logger.Info().Str("addr", addr).Msg("HTTP console listening")
	if err := h.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *HTTPConsole) Shutdown(ctx context.Context) error {
	return h.e.Shutdown(ctx)
}

// HandleHealth handles GET /healthz.
func (h *HTTPConsole) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "session": h.sh.ID()})
}

// HandleTree handles GET /tree.
// Returns the tree from root, one entry per line as dir_tree prints it.
func (h *HTTPConsole) HandleTree(c echo.Context) error {
	return c.JSON(http.StatusOK, TreeResponse{Lines: h.sh.TreeLines()})
}

// HandleKeys handles POST /keys.
// The body must be one or more complete lines. They run back to back and the
// reply carries everything they printed, including the echo of the typed
// bytes. While the terminal has a partly typed line the request is refused
// with 409 and nothing runs.
func (h *HTTPConsole) HandleKeys(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxKeysBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read request body"})
	}

	out := sinks.NewBuffer()
	err = h.sh.FeedLines(string(body), out)
	switch {
	case errors.Is(err, shell.ErrIncompleteLine):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body must end with a newline"})
	case errors.Is(err, shell.ErrInputBusy):
		return c.JSON(http.StatusConflict, echo.Map{"error": "a line is being typed on the terminal, retry later"})
	case err != nil:
		return err
	}

	resp := KeysResponse{Output: out.String(), Cwd: h.cwdPath()}
	h.logger.Debug().Int("bytes", len(body)).Str("cwd", resp.Cwd).Msg("Fed lines")
	return c.JSON(http.StatusOK, resp)
}

func (h *HTTPConsole) cwdPath() string {
	var path string
	h.sh.View(func(v shell.TreeView, cwd int) {
		path, _ = v.Path(cwd)
	})
	return path
}

// HashToken returns the bcrypt hash to configure as the console token hash
func HashToken(token string) (string, error) {
	if token == "" {
		return "", errors.New("token is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func tokenAuth(hash []byte) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
		Validator: func(key string, c echo.Context) (bool, error) {
			return bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil, nil
		},
	})
}

func (h *HTTPConsole) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			h.logger.Trace().
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("Request")
			return nil
		}
	}
}
