package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/brightleaf-health/epi-preprocessor/internal/htmlkit"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/config"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir"
	epihttp "github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/http"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app/commands"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app/queries"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/logging"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/runtime"
)

type Service struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func NewEPIService() (*Service, error) {
	appConfig, err := config.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}

	logger := logging.Init(appConfig.LogLevel, appConfig.LogFormat)

	kit := htmlkit.New()
	contentManager := fhir.NewContentManager(kit, appConfig.MaxSectionDepth)
	linkManager := fhir.NewLinkManager()

	cmdBus := app.NewCommandBus(
		commands.NewUpdateHTMLContentHandler(contentManager),
		commands.NewUpdateSectionHTMLHandler(contentManager),
		commands.NewReplaceHTMLSpanHandler(),
		commands.NewWrapHTMLHandler(),
		commands.NewAddElementLinkHandler(linkManager),
		commands.NewRemoveElementLinkHandler(linkManager),
	)

	queryBus := app.NewQueryBus(
		queries.NewHTMLContentQueryHandler(contentManager),
		queries.NewExtractAllContentQueryHandler(contentManager),
		queries.NewExportMarkdownQueryHandler(contentManager),
		queries.NewListElementLinksQueryHandler(linkManager),
		queries.NewGetElementLinkQueryHandler(linkManager),
		queries.NewAnalyzeHTMLQueryHandler(kit),
		queries.NewFindElementsQueryHandler(kit),
	)

	epiHTTPServer := epihttp.NewServer(cmdBus, queryBus)

	httpServer, err := runtime.NewHTTPServer(appConfig, epiHTTPServer)
	if err != nil {
		return nil, err
	}

	return &Service{
		httpServer: httpServer,
		logger:     logger,
	}, nil
}

// Start serves until the context is canceled or an interrupt arrives,
// then shuts down gracefully.
func (s *Service) Start(ctx context.Context) error {
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(timeoutCtx); err != nil {
		return err
	}

	s.logger.Info("server stopped")

	return nil
}
