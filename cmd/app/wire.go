//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/doc-summarizer/internal/bootstrap"
	"github.com/yanqian/doc-summarizer/internal/infra/config"
	httpiface "github.com/yanqian/doc-summarizer/internal/interface/http"
)

func initializeApp(cfg *config.Config) (*bootstrap.App, func(), error) {
	wire.Build(
		summarizerSet,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}

func initializeCLI(cfg *config.Config) (*bootstrap.CLI, func(), error) {
	wire.Build(
		summarizerSet,
		bootstrap.NewCLI,
	)
	return nil, nil, nil
}
