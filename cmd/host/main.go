// Dino Tidus: self-learning Russian chat agent
// Copyright (C) 2026  Guillermo Perry
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"dinotidus/internal/agent"
	"dinotidus/internal/config"
	"dinotidus/internal/logging"
	"dinotidus/internal/rpc"
	"dinotidus/internal/server"
)

// Configuration flags. Empty values keep what the config file and
// environment provide.
var (
	configFile = flag.String("config", "", "config file (yaml or toml)")
	httpAddr   = flag.String("http-addr", "", "REST API listen address, e.g. :8080 (:0 = auto-find open port)")
	grpcAddr   = flag.String("grpc-addr", "", "gRPC listen address, e.g. :9090")
	enableAPI  = flag.Bool("api", true, "enable REST API server")
	enableGRPC = flag.Bool("grpc", true, "enable gRPC server")
	ginMode    = flag.String("gin-mode", "", "gin mode: debug, release, test")
	logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error")
	portFile   = flag.Bool("port-file", true, "record the REST port for local CLI clients")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	log, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if err := run(cfg, log); err != nil {
		log.Error("host stopped with error: %v", err)
		log.Close()
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	if *httpAddr != "" {
		cfg.Server.HTTPAddr = *httpAddr
	}
	if *grpcAddr != "" {
		cfg.Server.GRPCAddr = *grpcAddr
	}
	if *ginMode != "" {
		cfg.Server.GinMode = *ginMode
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
}

func run(cfg *config.Config, log *logging.Logger) error {
	if !*enableAPI && !*enableGRPC {
		return fmt.Errorf("both REST and gRPC are disabled")
	}

	log.Info("Dino Tidus host starting...")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := agent.NewRegistry(cfg.Model, cfg.Agent, log.With("component", "agent"))
	g, ctx := errgroup.WithContext(ctx)

	if *enableAPI {
		lis, err := net.Listen("tcp", cfg.Server.HTTPAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Server.HTTPAddr, err)
		}
		if *portFile {
			port := lis.Addr().(*net.TCPAddr).Port
			log.Info("Writing port %d to %s", port, server.PortFile)
			if err := server.WritePortFile(port); err != nil {
				log.Warn("failed to write port file: %v", err)
			}
			defer server.CleanupPortFile()
		}
		api := server.New(registry, log.With("component", "api"))
		g.Go(func() error {
			return api.Serve(ctx, lis, cfg.Server.GinMode, cfg.Server.ShutdownTimeout)
		})
	}

	if *enableGRPC {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Server.GRPCAddr, err)
		}
		svc := rpc.NewService(registry, log.With("component", "grpc"))
		g.Go(func() error {
			return svc.Serve(ctx, lis)
		})
	}

	err := g.Wait()
	log.Info("Host stopped, %d sessions dropped", registry.Len())
	return err
}
