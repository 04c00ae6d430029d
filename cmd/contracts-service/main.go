package main

import (
	"fmt"
	"os"

	"github.com/outfitterhq/contracts-service/internal/auth"
	"github.com/outfitterhq/contracts-service/internal/config"
	"github.com/outfitterhq/contracts-service/internal/db"
	"github.com/outfitterhq/contracts-service/internal/excel"
	httphandler "github.com/outfitterhq/contracts-service/internal/http"
	"github.com/outfitterhq/contracts-service/internal/http/middleware"
	"github.com/outfitterhq/contracts-service/internal/logger"
	"github.com/outfitterhq/contracts-service/internal/pdf"
	"github.com/outfitterhq/contracts-service/internal/repository"
	"github.com/outfitterhq/contracts-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	huntRepo := repository.NewHuntRepository(database)
	pricingRepo := repository.NewPricingRepository(database)
	seasonRepo := repository.NewSeasonRepository(database)

	contractService := service.NewContractService(contractRepo, huntRepo, pricingRepo, seasonRepo, cfg, log)

	pdfGenerator := pdf.NewGenerator()
	excelGenerator := excel.NewGenerator()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, pdfGenerator, excelGenerator, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
