package server

import (
	"dinotidus/internal/agent"
	"dinotidus/pkg/neural"
)

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type SessionListResponse struct {
	Sessions []string `json:"sessions"`
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

type ChatResponse struct {
	SessionID string      `json:"session_id"`
	Reply     agent.Reply `json:"reply"`
	LatencyMs float64     `json:"latency_ms"`
}

type TrainRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Question  string `json:"question" binding:"required"`
	Answer    string `json:"answer" binding:"required"`
}

type BatchTrainRequest struct {
	SessionID string        `json:"session_id" binding:"required"`
	Pairs     []neural.Pair `json:"pairs"`
}

type TrainResponse struct {
	SessionID string      `json:"session_id"`
	Trained   int         `json:"trained"`
	Stats     agent.Stats `json:"stats"`
}

type StatsResponse struct {
	SessionID string      `json:"session_id"`
	Stats     agent.Stats `json:"stats"`
}

type ExamplesResponse struct {
	SessionID string        `json:"session_id"`
	Examples  []neural.Pair `json:"examples"`
}

type ModelRequest struct {
	Model string `json:"model" binding:"required"`
}

type ModelResponse struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Uptime   string `json:"uptime"`
}

type MetricsResponse struct {
	TotalTurns       uint64  `json:"total_turns"`
	TotalTrainings   uint64  `json:"total_trainings"`
	FailedRequests   uint64  `json:"failed_requests"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
	Sessions         int     `json:"sessions"`
	Uptime           string  `json:"uptime"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
