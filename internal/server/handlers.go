package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dinotidus/internal/agent"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Sessions: s.registry.Len(),
		Uptime:   time.Since(s.startTime).String(),
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	s.mu.RLock()
	turns := s.totalTurns
	trainings := s.totalTrainings
	failed := s.failedRequests
	latencyNs := s.totalLatencyNs
	s.mu.RUnlock()

	avgLatencyMs := float64(0)
	if turns > 0 {
		avgLatencyMs = float64(latencyNs) / float64(turns) / 1e6
	}

	c.JSON(http.StatusOK, MetricsResponse{
		TotalTurns:       turns,
		TotalTrainings:   trainings,
		FailedRequests:   failed,
		AverageLatencyMs: avgLatencyMs,
		Sessions:         s.registry.Len(),
		Uptime:           time.Since(s.startTime).String(),
	})
}

func (s *Server) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, SessionListResponse{Sessions: s.registry.IDs()})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	id, err := s.registry.Create()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{SessionID: id})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.registry.Delete(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleChat runs one turn. A request without a session id opens a new
// session.
func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if req.SessionID == "" {
		id, err := s.registry.Create()
		if err != nil {
			s.fail(c, err)
			return
		}
		req.SessionID = id
	}

	var reply agent.Reply
	start := time.Now()
	err := s.registry.Do(c.Request.Context(), req.SessionID, func(a *agent.Agent) error {
		reply = a.Respond(req.Message)
		return nil
	})
	latency := time.Since(start)
	s.recordTurn(latency, err)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		SessionID: req.SessionID,
		Reply:     reply,
		LatencyMs: float64(latency.Microseconds()) / 1000,
	})
}

func (s *Server) handleTrain(c *gin.Context) {
	var req TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var stats agent.Stats
	err := s.registry.Do(c.Request.Context(), req.SessionID, func(a *agent.Agent) error {
		a.Train(req.Question, req.Answer)
		stats = a.Stats()
		return nil
	})
	s.recordTraining(1, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TrainResponse{SessionID: req.SessionID, Trained: 1, Stats: stats})
}

func (s *Server) handleTrainBatch(c *gin.Context) {
	var req BatchTrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if len(req.Pairs) == 0 {
		badRequest(c, "empty batch")
		return
	}

	var stats agent.Stats
	err := s.registry.Do(c.Request.Context(), req.SessionID, func(a *agent.Agent) error {
		a.TrainBatch(req.Pairs, nil)
		stats = a.Stats()
		return nil
	})
	s.recordTraining(len(req.Pairs), err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TrainResponse{SessionID: req.SessionID, Trained: len(req.Pairs), Stats: stats})
}

func (s *Server) handleStats(c *gin.Context) {
	id := c.Param("id")
	var stats agent.Stats
	err := s.registry.Do(c.Request.Context(), id, func(a *agent.Agent) error {
		stats = a.Stats()
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{SessionID: id, Stats: stats})
}

func (s *Server) handleExamples(c *gin.Context) {
	id := c.Param("id")
	resp := ExamplesResponse{SessionID: id}
	err := s.registry.Do(c.Request.Context(), id, func(a *agent.Agent) error {
		resp.Examples = a.Examples()
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSaveModel(c *gin.Context) {
	id := c.Param("id")
	resp := ModelResponse{SessionID: id}
	err := s.registry.Do(c.Request.Context(), id, func(a *agent.Agent) error {
		var err error
		resp.Model, err = a.Save()
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLoadModel(c *gin.Context) {
	var req ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	id := c.Param("id")
	var stats agent.Stats
	err := s.registry.Do(c.Request.Context(), id, func(a *agent.Agent) error {
		if err := a.Load(req.Model); err != nil {
			return err
		}
		stats = a.Stats()
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{SessionID: id, Stats: stats})
}

func (s *Server) handleReset(c *gin.Context) {
	id := c.Param("id")
	var stats agent.Stats
	err := s.registry.Do(c.Request.Context(), id, func(a *agent.Agent) error {
		if err := a.Reset(); err != nil {
			return err
		}
		stats = a.Stats()
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{SessionID: id, Stats: stats})
}
