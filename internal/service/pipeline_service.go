package service

import (
	"context"
	"fmt"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/metrics"
	"github.com/modbuild/pulse/internal/repository"
)

type pipelineService struct {
	quotes   repository.QuoteRepo
	observer UseCaseObserver
}

func NewPipelineService(quotes repository.QuoteRepo, observers ...UseCaseObserver) PipelineService {
	return &pipelineService{
		quotes:   quotes,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Forecast scores the latest version of every quote.
func (s *pipelineService) Forecast(ctx context.Context, req contract.PipelineRequest) contract.Result[metrics.PipelineForecast] {
	now := contract.ResolveNow(req.Now)
	uc := startUseCase(s.observer, "sales-pipeline", map[string]any{"factory": req.FactoryCode})

	quotes, err := s.quotes.List(ctx, repository.QuoteFilter{FactoryCode: req.FactoryCode})
	if err != nil {
		err = fmt.Errorf("loading sales quotes: %w", err)
		uc.done(ctx, err)
		return failWith(metrics.ForecastPipeline(nil, now), err)
	}

	forecast := metrics.ForecastPipeline(metrics.LatestVersions(values(quotes)), now)
	uc.fields["active"] = forecast.ActiveCount
	uc.fields["unbucketed"] = forecast.Unbucketed
	uc.done(ctx, nil)
	return contract.OK(forecast)
}
