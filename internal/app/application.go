package app

import (
	"context"
	"errors"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/component/mutation"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/uploader"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/support/dotconvention"
	"github.com/tigerroll/surfin-transporter/pkg/batch/engine/upload"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/serialization"
)

const (
	ExitCodeSuccess = 0
	ExitCodeFailure = 1
)

// RunApplication loads the configuration, runs the selected uploader once and
// returns the process exit code.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig) int {
	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Errorf("Failed to load configuration: %v", err)
		return ExitCodeFailure
	}

	// Set log level based on loaded configuration
	if cfg.Surfin.System.Logging.JSON {
		logger.SetOutput(os.Stderr, true)
	}
	logger.SetLogLevel(cfg.Surfin.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Surfin.System.Logging.Level)

	if err := cfg.Validate(); err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		return ExitCodeFailure
	}

	return Run(NewApplication(appCtx, cfg))
}

// NewApplication builds the fx application for cfg. The upload starts when
// the application starts and shuts the application down when it ends.
func NewApplication(appCtx context.Context, cfg *config.Config) *fx.App {
	return fx.New(
		fx.Supply(
			cfg,
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),
		Module,
		fx.Invoke(startUpload),
	)
}

// Run starts app, waits for the upload to finish and stops it. The exit code
// is the one the upload requested.
func Run(app *fx.App) int {
	if err := app.Err(); err != nil {
		logger.Errorf("Failed to build application: %v", err)
		return ExitCodeFailure
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		logger.Errorf("Application start failed: %v", err)
		return ExitCodeFailure
	}

	signal := <-app.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		logger.Errorf("Application stop failed: %v", err)
		if signal.ExitCode == ExitCodeSuccess {
			return ExitCodeFailure
		}
	}
	return signal.ExitCode
}

// uploadParams defines the dependencies of the run hook.
type uploadParams struct {
	fx.In
	Lifecycle   fx.Lifecycle
	Shutdowner  fx.Shutdowner
	AppCtx      context.Context `name:"appCtx"`
	Cfg         *config.Config
	Runner      *upload.Runner
	Registry    *uploader.Registry
	Ops         *mutation.Ops
	Entities    port.EntityRepository
	URLRewrites port.URLRewriteRepository
	Recorder    metrics.MetricRecorder
}

// startUpload is invoked by Fx to run the upload once the application has started.
func startUpload(p uploadParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				code := ExitCodeFailure
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in upload run: %v", r)
						code = ExitCodeFailure
					}
					logger.Infof("Requesting application shutdown after upload (exit code %d).", code)
					if err := p.Shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()
				code = executeUpload(p.AppCtx, p)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}

// executeUpload builds the configured handler, runs it and flushes metrics.
func executeUpload(ctx context.Context, p uploadParams) int {
	name, def, err := p.Cfg.SelectedUploader()
	if err != nil {
		logger.Errorf("%v", err)
		return ExitCodeFailure
	}

	location, err := time.LoadLocation(p.Cfg.Surfin.System.Timezone)
	if err != nil {
		logger.Warnf("Unknown timezone '%s', using UTC: %v", p.Cfg.Surfin.System.Timezone, err)
		location = time.UTC
	}

	if props, err := serialization.MarshalMaskedProperties(def.Properties, p.Cfg.Surfin.Security.MaskedPropertyKeys); err == nil {
		logger.Infof("Uploader '%s' (kind %s) properties: %s", name, def.Kind, props)
	}

	handler, err := p.Registry.Build(name, def, uploader.Dependencies{
		Mutations:         p.Ops,
		Accessor:          dotconvention.NewPathAccessor(),
		Entities:          p.Entities,
		URLRewrites:       p.URLRewrites,
		Location:          location,
		ReindexAfterWrite: p.Cfg.Surfin.Upload.ReindexAfterWrite,
	})
	if err != nil {
		logger.Errorf("Failed to build uploader '%s': %v", name, err)
		return ExitCodeFailure
	}

	upCfg := p.Cfg.Surfin.Upload
	summary, runErr := p.Runner.Execute(ctx, handler, upload.Options{
		ActivityID:      upCfg.ActivityID,
		UploaderName:    name,
		ContinueOnError: upCfg.ContinueOnError,
		FailureLimit:    upCfg.FailureLimit,
	})

	if err := p.Recorder.Flush(ctx); err != nil {
		logger.Warnf("Failed to flush metrics: %v", err)
	}

	if runErr != nil {
		if errors.Is(runErr, upload.ErrRunAborted) {
			logger.Errorf("Upload '%s' aborted: %v", name, runErr)
		} else {
			logger.Errorf("Upload '%s' failed: %v", name, runErr)
		}
		return ExitCodeFailure
	}
	logger.Infof("Upload '%s' (run %s) completed: %d succeeded, %d failed, %d skipped.",
		name, summary.RunID, summary.Succeeded(), summary.Failed(), summary.Skipped())
	return ExitCodeSuccess
}
