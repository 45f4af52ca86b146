package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"lightsensord/internal/config"
	"lightsensord/internal/handlers"
	"lightsensord/internal/logger"
	"lightsensord/internal/metrics"
	"lightsensord/internal/repository"
	"lightsensord/internal/repository/db"
	"lightsensord/internal/sensor"
	"lightsensord/internal/server"
	"lightsensord/internal/service"
)

var version = "dev" // replaced at build time

const shutdownTimeout = 10 * time.Second

// @title lightsensord API
// @version 1.0
// @description Ambient light sensor daemon: control, state, readings and event log.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	var configDir string

	app := &cobra.Command{
		Use:     "lightsensord",
		Short:   "Ambient light sensor daemon",
		Version: version,
		// no subcommand means serve
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configDir)
		},
	}
	app.PersistentFlags().StringVar(&configDir, "config", "configs", "directory holding config.yml")

	app.AddCommand(serveEntry(&configDir))
	app.AddCommand(calibrateEntry(&configDir))

	if err := app.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func serveEntry(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Poll the sensor and serve the control API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *configDir)
		},
	}
}

func calibrateEntry(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Apply the persisted calibration factor and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return calibrate(*configDir)
		},
	}
}

func serve(ctx context.Context, configDir string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Get(cfg.Log.Level)

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer closeDB(sqlDB, log)

	dev, err := sensor.OpenInputDevice(cfg.Sensor.InputDevice)
	if err != nil {
		return err
	}
	reader, err := sensor.NewInputReader(dev, cfg.Sensor.ReaderCapacity, cfg.Sensor.EventSize)
	if err != nil {
		_ = dev.Close()
		return err
	}
	ls, err := sensor.New(cfg.SensorDriverConfig(), sensor.NewSysfsControl(afero.NewOsFs()), reader, sensor.MonotonicClock{}, log.Named("sensor"))
	if err != nil {
		_ = dev.Close()
		return err
	}
	driver := service.NewDriver(ls)
	defer func() {
		if cerr := driver.Close(); cerr != nil {
			log.Warnw("close_sensor_failed", "err", cerr)
		}
	}()

	m := metrics.New()
	services := service.NewService(repository.NewRepository(sqlDB), service.Deps{
		Driver:      driver,
		Waiter:      dev,
		Metrics:     m,
		Log:         log,
		SigningKey:  cfg.Auth.SigningKey,
		TokenTTL:    cfg.Auth.TokenTTL,
		PollBatch:   cfg.Sensor.PollBatch,
		PollTimeout: cfg.Sensor.PollTimeout,
	})

	if starter, ok := services.Sensor.(*service.SensorService); ok {
		if err := starter.RecordStartup(ctx); err != nil {
			log.Warnw("record_startup_failed", "err", err)
		}
	}

	// context for background goroutines
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Deferred after driver.Close and closeDB, so it runs before them: the
	// poller must be gone before the device and the store are closed.
	pollerDone := services.Poller.Start(ctx)
	defer func() {
		cancel()
		<-pollerDone
	}()

	apiHandler := handlers.NewHandler(services, m.Handler(), log.Named("http"))
	srv := &server.Server{}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Run(cfg.Port, apiHandler.InitRoutes())
	}()
	log.Infow("lightsensord_started", "version", version, "port", cfg.Port, "device", cfg.Sensor.InputDevice)

	select {
	case err := <-serveErr:
		cancel()
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// calibrate runs the calibration loader once against the live sysfs tree.
func calibrate(configDir string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Get(cfg.Log.Level)

	loader := sensor.NewCalibrationLoader(sensor.NewSysfsControl(afero.NewOsFs()), cfg.SensorDriverConfig().Calibration, log.Named("calibration"))
	cal, err := loader.Load()
	if err != nil {
		var calErr *sensor.CalibrationError
		if errors.As(err, &calErr) {
			log.Errorw("calibration_failed", "kind", calErr.Kind.String(), "path", calErr.Path, "err", calErr.Err)
		}
		return err
	}
	fmt.Printf("calibration applied: factor=%d record=%v\n", cal.Factor, cal.Record)
	return nil
}

func closeDB(sqlDB *sql.DB, log *logger.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Warnw("close_sqlite_failed", "err", err)
	}
}
