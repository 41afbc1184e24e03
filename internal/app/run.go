package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"climatedash-server/internal/config"
	"climatedash-server/internal/db"
	"climatedash-server/internal/httpapi"
	"climatedash-server/internal/migrate"
	"climatedash-server/internal/modules/dashboard"
	"climatedash-server/internal/modules/dashboard/controller"
	"climatedash-server/internal/modules/dashboard/countrycodes"
	"climatedash-server/internal/modules/dashboard/dataset"
	"climatedash-server/internal/modules/dashboard/types"
	"climatedash-server/internal/modules/dashboard/views"
	"climatedash-server/internal/mqtt"
)

const (
	mqttConnectTimeout = 5 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"dataDir", cfg.DataDir,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"countryMatch", cfg.CountryMatch,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	ds, err := dataset.LoadDir(ctx, cfg.DataDir)
	if err != nil {
		return err
	}
	minYear, maxYear := ds.YearRange()
	missing := countMissing(ds.Indicators())
	logger.Info("dataset loaded",
		"indicatorRows", ds.Len(),
		"countries", len(ds.Countries()),
		"minYear", minYear,
		"maxYear", maxYear,
		"missingTemperature", missing.Temperature,
		"missingGHGEmission", missing.GHGEmission,
		"missingGDP", missing.GDP,
		"missingMeatConsumption", missing.MeatConsumption,
	)

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn, logger); err != nil {
		return err
	}

	mode, err := countrycodes.ParseMatchMode(cfg.CountryMatch)
	if err != nil {
		return err
	}
	resolver, err := countrycodes.Load(ctx, countrycodes.NewRepository(dbConn), mode)
	if err != nil {
		return err
	}
	logger.Info("country codes loaded", "mode", cfg.CountryMatch)

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	var (
		events    controller.SelectionPublisher
		publisher *mqtt.Publisher
	)
	if cfg.MQTTEnabled() {
		publisher = mqtt.NewPublisher(cfg, logger)
		events = publisher
		// Startup does not wait for the broker; the client keeps retrying.
		go func() {
			connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
			defer cancel()
			if err := publisher.Connect(connectCtx); err != nil {
				logger.Warn("mqtt connection failed (continuing without selection events)", "error", err)
			}
		}()
	}

	mux := httpapi.NewMux(dbConn, cfg.StaticDir)
	dashboard.RegisterFeature(mux, ds, resolver, events)

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if publisher != nil {
		logger.Info("mqtt disconnecting")
		publisher.Disconnect()
	}

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// missingCounts holds the number of null values per indicator column.
type missingCounts struct {
	Temperature     int
	GHGEmission     int
	GDP             int
	MeatConsumption int
}

func countMissing(rows []types.IndicatorRow) missingCounts {
	var m missingCounts
	for _, r := range rows {
		if !r.Temperature.Valid {
			m.Temperature++
		}
		if !r.GHGEmission.Valid {
			m.GHGEmission++
		}
		if !r.GDP.Valid {
			m.GDP++
		}
		if !r.MeatConsumption.Valid {
			m.MeatConsumption++
		}
	}
	return m
}
