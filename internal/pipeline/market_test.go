package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/store"
)

type barFunc func(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error)

func (f barFunc) Daily(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	return f(ctx, symbol, from, to)
}

func bar(symbol, day string, closeVal float64) model.PriceBar {
	d, _ := time.Parse(time.DateOnly, day)
	return model.PriceBar{Symbol: symbol, Date: d, Open: closeVal - 1, High: closeVal + 1, Low: closeVal - 2, Close: closeVal, Volume: 1000}
}

func readSheet(t *testing.T, path string) [][]*xlsx.Cell {
	t.Helper()
	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	rows := make([][]*xlsx.Cell, 0, len(f.Sheets[0].Rows))
	for _, r := range f.Sheets[0].Rows {
		rows = append(rows, r.Cells)
	}
	return rows
}

func TestMarket_Run(t *testing.T) {
	stocks := barFunc(func(_ context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
		assert.Equal(t, "2026-01-02", from.Format(time.DateOnly))
		assert.Equal(t, "2026-01-06", to.Format(time.DateOnly))
		switch symbol {
		case "ACME":
			return []model.PriceBar{bar("ACME", "2026-01-02", 10.5), bar("ACME", "2026-01-05", 11.25)}, nil
		case "BETA":
			return nil, errors.New("tiingo: no prices")
		}
		return []model.PriceBar{bar(symbol, "2026-01-02", 50)}, nil
	})
	index := barFunc(func(_ context.Context, symbol string, _, _ time.Time) ([]model.PriceBar, error) {
		assert.Equal(t, "^VIX", symbol)
		return []model.PriceBar{bar("^VIX", "2026-01-02", 17.5)}, nil
	})
	st := newTestStore(t)
	dir := t.TempDir()

	res, err := NewMarket(stocks, index, st).Run(context.Background(), []string{"acme", "BETA", "gamma"}, MarketOptions{
		Start:       "2026-01-02",
		End:         "2026-01-06",
		IndexSymbol: "^VIX",
		OutputDir:   dir,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME", "BETA", "GAMMA"}, res.Tickers)
	assert.Equal(t, []string{"BETA"}, res.Failed)
	assert.Equal(t, 3, res.StockRows)
	assert.Equal(t, 1, res.IndexRows)
	assert.Equal(t, filepath.Join(dir, StockFile), res.StockOutput)
	assert.Equal(t, filepath.Join(dir, IndexFile), res.IndexOutput)

	rows := readSheet(t, res.StockOutput)
	require.Len(t, rows, 4)
	assert.Equal(t, "symbol", rows[0][0].Value)
	assert.Equal(t, "volume", rows[0][6].Value)
	assert.Equal(t, "ACME", rows[1][0].Value)
	assert.Equal(t, "2026-01-02", rows[1][1].Value)
	closeVal, err := rows[2][5].Float()
	require.NoError(t, err)
	assert.InDelta(t, 11.25, closeVal, 1e-9)
	assert.Equal(t, "GAMMA", rows[3][0].Value)

	vix := readSheet(t, res.IndexOutput)
	require.Len(t, vix, 2)
	assert.Equal(t, "^VIX", vix[1][0].Value)

	run, err := st.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunKindMarket, run.Kind)
	assert.Equal(t, model.RunStatusDone, run.Status)
	assert.Equal(t, 4, run.RowsWritten)
	assert.Equal(t, res.StockOutput, run.Output)
}

func TestMarket_Run_NoPrices(t *testing.T) {
	stocks := barFunc(func(context.Context, string, time.Time, time.Time) ([]model.PriceBar, error) {
		return nil, errors.New("down")
	})
	index := barFunc(func(context.Context, string, time.Time, time.Time) ([]model.PriceBar, error) {
		t.Fatal("index must not be fetched")
		return nil, nil
	})
	st := newTestStore(t)

	_, err := NewMarket(stocks, index, st).Run(context.Background(), []string{"ACME"}, MarketOptions{
		End:       "2026-01-06",
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no prices for 1 ticker(s)")

	runs, err := st.ListRuns(context.Background(), store.RunFilter{Kind: model.RunKindMarket})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
}

func TestMarket_Run_IndexFailure(t *testing.T) {
	stocks := barFunc(func(_ context.Context, symbol string, _, _ time.Time) ([]model.PriceBar, error) {
		return []model.PriceBar{bar(symbol, "2026-01-02", 10)}, nil
	})
	index := barFunc(func(context.Context, string, time.Time, time.Time) ([]model.PriceBar, error) {
		return nil, errors.New("yahoo: chart ^VIX: empty result")
	})
	dir := t.TempDir()

	_, err := NewMarket(stocks, index, nil).Run(context.Background(), []string{"ACME"}, MarketOptions{
		End:         "2026-01-06",
		IndexSymbol: "^VIX",
		OutputDir:   dir,
	})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, StockFile))
}

func TestMarket_Run_NoTickers(t *testing.T) {
	_, err := NewMarket(nil, nil, nil).Run(context.Background(), nil, MarketOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "universe.tickers is required")
}
