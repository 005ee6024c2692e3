package tencent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market-breadth/src/helpers"
	"market-breadth/src/interfaces"
	"market-breadth/src/logger"
	"market-breadth/src/models"
	"market-breadth/src/quote"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// TencentQuoteSource talks to the qt.gtimg.cn quote endpoint.
type TencentQuoteSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewTencentQuoteSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *TencentQuoteSource {
	return &TencentQuoteSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (s *TencentQuoteSource) Name() string {
	return "tencent"
}

// -----------------------------------------------------------------------------

// URL builds the request URL for symbols, comma separated after the endpoint.
func (s *TencentQuoteSource) URL(symbols []string) string {
	return s.Config.DataSource.Endpoint + strings.Join(symbols, ",")
}

// -----------------------------------------------------------------------------

// FetchBatch issues one request for symbols and returns the body decoded from
// GB2312. GBK is a superset of GB2312, so its decoder is used.
func (s *TencentQuoteSource) FetchBatch(ctx context.Context, symbols []string) (string, error) {
	timeout := time.Duration(s.Config.DataSource.BatchTimeoutSeconds) * time.Second
	return s.fetchText(ctx, symbols, timeout)
}

// -----------------------------------------------------------------------------

// FetchIndex returns the configured reference index quote.
func (s *TencentQuoteSource) FetchIndex(ctx context.Context) (models.MIndexQuote, error) {
	symbol := s.Config.DataSource.IndexSymbol
	timeout := time.Duration(s.Config.DataSource.IndexTimeoutSeconds) * time.Second

	text, err := s.fetchText(ctx, []string{symbol}, timeout)
	if err != nil {
		return models.MIndexQuote{}, err
	}

	q, err := quote.ParseIndex(text, symbol)
	if err != nil {
		return models.MIndexQuote{}, helpers.NewDataSourceError("parse index", err)
	}
	return q, nil
}

// -----------------------------------------------------------------------------

// FetchQuotes looks up full quotes for codes such as "600519" or "sz000001".
// Codes are requested in batch-size chunks; a failed chunk fails the call.
func (s *TencentQuoteSource) FetchQuotes(ctx context.Context, codes []string) ([]models.MQuoteRecord, error) {
	symbols := make([]string, 0, len(codes))
	for _, c := range codes {
		if sym := quote.FormatCode(c); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		return nil, helpers.NewValidationError("no valid codes", nil)
	}

	timeout := time.Duration(s.Config.DataSource.BatchTimeoutSeconds) * time.Second
	var out []models.MQuoteRecord
	for _, batch := range Partition(symbols, s.Config.DataSource.BatchSize) {
		text, err := s.fetchText(ctx, batch, timeout)
		if err != nil {
			return nil, err
		}
		out = append(out, quote.ParseQuotes(text)...)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *TencentQuoteSource) fetchText(ctx context.Context, symbols []string, timeout time.Duration) (string, error) {
	body, err := s.Network.Get(ctx, s.URL(symbols), timeout)
	if err != nil {
		return "", err
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(body)
	if err != nil {
		return "", helpers.NewDataSourceError("decode GB2312 response", err)
	}
	return string(decoded), nil
}

// -----------------------------------------------------------------------------

// Partition splits symbols into consecutive chunks of at most size entries.
// The chunks share the input's backing array.
func Partition(symbols []string, size int) [][]string {
	if size <= 0 {
		size = len(symbols)
	}
	if len(symbols) == 0 {
		return nil
	}

	batches := make([][]string, 0, (len(symbols)+size-1)/size)
	for start := 0; start < len(symbols); start += size {
		end := min(start+size, len(symbols))
		batches = append(batches, symbols[start:end:end])
	}
	return batches
}

// -----------------------------------------------------------------------------

// Describe renders a short label for logs, e.g. "sh600000..sh600499 (500)".
func Describe(batch []string) string {
	if len(batch) == 0 {
		return "(empty)"
	}
	return fmt.Sprintf("%s..%s (%d)", batch[0], batch[len(batch)-1], len(batch))
}
