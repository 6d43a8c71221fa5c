// Package server exposes script execution over HTTP so editor frontends
// can run pre-request and test scripts without embedding the engine.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loykin/apiscript/internal/common"
	"github.com/loykin/apiscript/internal/engine"
	"github.com/loykin/apiscript/internal/state"
)

// RunRequest is the JSON body of a script execution call.
type RunRequest struct {
	Script      string          `json:"script"`
	Request     state.Request   `json:"request"`
	Response    *state.Response `json:"response,omitempty"`
	Environment state.Map       `json:"environment"`
	Variables   state.Map       `json:"variables"`
}

type Server struct {
	engine *engine.Engine
}

// New returns a Server backed by the given engine.
func New(e *engine.Engine) *Server {
	if e == nil {
		e = engine.New()
	}
	return &Server{engine: e}
}

// Router builds the gin handler. Script failures are ordinary results,
// not HTTP errors; only malformed payloads produce non-200 responses.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/scripts")
	api.POST("/pre-request", s.handleRun(state.KindPreRequest))
	api.POST("/tests", s.handleRun(state.KindTests))

	return r
}

func (s *Server) handleRun(kind state.Kind) gin.HandlerFunc {
	logger := common.GetLogger().WithComponent("server").WithScript(string(kind))
	return func(c *gin.Context) {
		var req RunRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if kind == state.KindTests && req.Response == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tests run requires a response"})
			return
		}

		sc := state.Context{
			Request:     req.Request,
			Response:    req.Response,
			Environment: req.Environment,
			Variables:   req.Variables,
		}
		res := s.engine.Run(c.Request.Context(), req.Script, sc, kind)
		if !res.Succeeded {
			logger.Debug("script run failed", "kind", res.ErrorKind, "error", res.FatalError)
		}
		c.JSON(http.StatusOK, res)
	}
}
