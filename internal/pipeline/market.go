package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/store"
)

// Output names used under MarketOptions.OutputDir.
const (
	StockFile = "stock_data.xlsx"
	IndexFile = "vix_data.xlsx"
)

// BarSource returns daily bars for one symbol over an inclusive window.
type BarSource interface {
	Daily(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error)
}

// MarketOptions configures one market run.
type MarketOptions struct {
	Start, End string
	SpanDays   int
	// IndexSymbol is the volatility index fetched alongside the tickers.
	IndexSymbol string
	OutputDir   string

	// Now defaults to time.Now.
	Now func() time.Time
}

// MarketResult summarizes a market run.
type MarketResult struct {
	RunID       string
	StockOutput string
	IndexOutput string
	Tickers     []string
	From, To    time.Time
	StockRows   int
	IndexRows   int
	// Failed lists tickers whose prices could not be fetched.
	Failed []string
}

// Market fetches daily stock prices and a volatility index into two
// workbooks.
type Market struct {
	stocks BarSource
	index  BarSource
	store  store.Store
}

// NewMarket creates a market pipeline. st may be nil.
func NewMarket(stocks, index BarSource, st store.Store) *Market {
	return &Market{stocks: stocks, index: index, store: st}
}

// Run fetches every ticker then the index. A ticker that fails is skipped;
// the run fails when no ticker yields prices or the index cannot be read.
func (m *Market) Run(ctx context.Context, tickers []string, opts MarketOptions) (*MarketResult, error) {
	lg := startRun(ctx, m.store, model.RunKindMarket, tickers)

	subjects := ResolveSubjects(tickers, nil)
	if len(subjects) == 0 {
		err := &config.MissingError{
			Mode:    "market",
			Missing: []config.Requirement{{Key: "universe.tickers", Envs: []string{config.EnvPrefix + "_UNIVERSE_TICKERS", "--tickers"}}},
		}
		lg.fail(ctx, err)
		return nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	from, to, err := ResolveWindow(opts.Start, opts.End, opts.SpanDays, now())
	if err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	lg.set(ctx, model.RunStatusSubjectsResolved)

	res := &MarketResult{
		RunID:       lg.ID(),
		StockOutput: filepath.Join(opts.OutputDir, StockFile),
		IndexOutput: filepath.Join(opts.OutputDir, IndexFile),
		Tickers:     subjects,
		From:        from,
		To:          to,
	}

	lg.set(ctx, model.RunStatusFetching)
	var bars []model.PriceBar
	for _, t := range subjects {
		if ctx.Err() != nil {
			lg.fail(ctx, ctx.Err())
			return nil, ctx.Err()
		}
		got, err := m.stocks.Daily(ctx, t, from, to)
		if err != nil {
			lg.log.Warn("market: ticker failed, continuing", zap.String("ticker", t), zap.Error(err))
			res.Failed = append(res.Failed, t)
			continue
		}
		bars = append(bars, got...)
	}
	if len(bars) == 0 {
		err := eris.Errorf("market: no prices for %d ticker(s)", len(subjects))
		lg.fail(ctx, err)
		return nil, err
	}

	index, err := m.index.Daily(ctx, opts.IndexSymbol, from, to)
	if err != nil {
		lg.fail(ctx, err)
		return nil, err
	}

	if err := writeBarsXLSX(res.StockOutput, "stock", bars); err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	if err := writeBarsXLSX(res.IndexOutput, "index", index); err != nil {
		lg.fail(ctx, err)
		return nil, err
	}
	res.StockRows = len(bars)
	res.IndexRows = len(index)
	lg.set(ctx, model.RunStatusWritten)
	lg.complete(ctx, res.StockOutput, res.StockRows+res.IndexRows)

	lg.log.Info("market: run complete",
		zap.String("stock_output", res.StockOutput),
		zap.String("index_output", res.IndexOutput),
		zap.Int("stock_rows", res.StockRows),
		zap.Int("index_rows", res.IndexRows),
		zap.Strings("failed", res.Failed),
	)
	return res, nil
}
