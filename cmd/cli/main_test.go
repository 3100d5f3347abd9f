package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinotidus/internal/agent"
	"dinotidus/internal/config"
	"dinotidus/internal/server"
	"dinotidus/pkg/nlp"
)

func TestResolveBaseURL(t *testing.T) {
	old := server.PortFile
	server.PortFile = filepath.Join(t.TempDir(), "host.port")
	defer func() { server.PortFile = old }()

	cfg := config.Default()
	assert.Equal(t, "http://127.0.0.1:8080", resolveBaseURL("", cfg))
	assert.Equal(t, "http://example.com:9000", resolveBaseURL("example.com:9000", cfg))
	assert.Equal(t, "https://bot.example.com", resolveBaseURL("https://bot.example.com", cfg))
	assert.Equal(t, "http://127.0.0.1:7000", resolveBaseURL(":7000", cfg))

	require.NoError(t, server.WritePortFile(8123))
	assert.Equal(t, "http://127.0.0.1:8123", resolveBaseURL("", cfg))
}

func TestTrainThenAsk(t *testing.T) {
	model := filepath.Join(t.TempDir(), "model.json")

	train := TrainCmd()
	var trainOut bytes.Buffer
	train.SetOut(&trainOut)
	train.SetArgs([]string{"--out", model})
	require.NoError(t, train.Execute())
	assert.Contains(t, trainOut.String(), "Model written to "+model)
	assert.FileExists(t, model)

	ask := AskCmd()
	var askOut bytes.Buffer
	ask.SetOut(&askOut)
	ask.SetArgs([]string{"--model", model, "--json", "Привет,", "как", "дела?"})
	require.NoError(t, ask.Execute())

	var reply agent.Reply
	require.NoError(t, json.Unmarshal(askOut.Bytes(), &reply))
	assert.Equal(t, nlp.MessageGreeting, reply.MessageType)
	assert.NotEmpty(t, reply.Text)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dinotidus.toml")

	cmd := ConfigCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"init", path})
	require.NoError(t, cmd.Execute())

	configPath = path
	defer func() { configPath = "" }()
	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Model, cfg.Model)
}
