package main

import (
	"fmt"
	"os"
	"strings"

	"dinotidus/internal/agent"
	"dinotidus/internal/config"
	"dinotidus/internal/logging"
	"dinotidus/internal/server"
)

// setup loads the configuration and builds the logger. quiet drops console
// logging, which would otherwise draw over the TUI.
func setup(quiet bool) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if quiet && (cfg.Logging.Output == "" || cfg.Logging.Output == "stderr" || cfg.Logging.Output == "stdout") {
		return cfg, logging.Nop(), nil
	}
	log, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// newAgent builds a local agent, optionally restored from a snapshot file.
func newAgent(cfg *config.Config, log *logging.Logger, modelPath string) (*agent.Agent, error) {
	a, err := agent.New(cfg.Model, cfg.Agent, agent.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if modelPath == "" {
		return a, nil
	}
	data, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	if err := a.Load(string(data)); err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", modelPath, err)
	}
	return a, nil
}

// saveAgent writes the agent snapshot to path.
func saveAgent(a *agent.Agent, path string) error {
	data, err := a.Save()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(data), 0644)
}

// resolveBaseURL picks the host URL from the flag, then the port file of a
// running host, then the configured listen address.
func resolveBaseURL(addr string, cfg *config.Config) string {
	if addr == "" {
		if port, err := server.ReadPortFile(); err == nil {
			return fmt.Sprintf("http://127.0.0.1:%d", port)
		}
		addr = cfg.Server.HTTPAddr
	}
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}
