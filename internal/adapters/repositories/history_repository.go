package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
)

type historyMetaDocument struct {
	RequestMS  int64 `json:"request_ms"`
	StatusCode int   `json:"status_code"`
}

type historyRecordDocument struct {
	ID           string              `json:"id"`
	FromCurrency string              `json:"from_currency"`
	ToCurrency   string              `json:"to_currency"`
	Rate         float64             `json:"rate"`
	Timestamp    string              `json:"timestamp"`
	Source       string              `json:"source"`
	Meta         historyMetaDocument `json:"meta"`
}

type historyDocument struct {
	Records []historyRecordDocument `json:"records"`
}

// HistoryRepository appends fetched rates to the exchange_rates document.
type HistoryRepository struct {
	store portsrepo.KVStore
	mu    sync.Mutex
}

var _ portsrepo.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(store portsrepo.KVStore) *HistoryRepository {
	return &HistoryRepository{store: store}
}

func (r *HistoryRepository) Append(ctx context.Context, record domain.HistoryRecord) error {
	return r.AppendMany(ctx, []domain.HistoryRecord{record})
}

// AppendMany adds records after the existing ones and rewrites the document once.
func (r *HistoryRepository) AppendMany(ctx context.Context, records []domain.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var doc historyDocument
	if _, err := loadDocument(ctx, r.store, portsrepo.RatesHistoryKey, &doc); err != nil {
		return fmt.Errorf("failed to load rates history: %w", err)
	}
	for _, rec := range records {
		doc.Records = append(doc.Records, historyRecordDocument{
			ID:           rec.ID,
			FromCurrency: rec.Pair.From,
			ToCurrency:   rec.Pair.To,
			Rate:         rec.Rate,
			Timestamp:    rec.Timestamp.UTC().Format(domain.HistoryTimestampLayout),
			Source:       rec.Source,
			Meta:         historyMetaDocument{RequestMS: rec.Meta.RequestMS, StatusCode: rec.Meta.StatusCode},
		})
	}

	if err := saveDocument(ctx, r.store, portsrepo.RatesHistoryKey, doc); err != nil {
		return fmt.Errorf("failed to persist rates history: %w", err)
	}
	return nil
}

// List returns all records in insertion order.
func (r *HistoryRepository) List(ctx context.Context) ([]domain.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var doc historyDocument
	if _, err := loadDocument(ctx, r.store, portsrepo.RatesHistoryKey, &doc); err != nil {
		return nil, fmt.Errorf("failed to load rates history: %w", err)
	}

	out := make([]domain.HistoryRecord, 0, len(doc.Records))
	for _, d := range doc.Records {
		ts, err := parseTimestamp(d.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("history record '%s': %w", d.ID, err)
		}
		out = append(out, domain.HistoryRecord{
			ID:        d.ID,
			Pair:      domain.CurrencyPair{From: d.FromCurrency, To: d.ToCurrency},
			Rate:      d.Rate,
			Timestamp: ts,
			Source:    d.Source,
			Meta:      domain.HistoryMeta{RequestMS: d.Meta.RequestMS, StatusCode: d.Meta.StatusCode},
		})
	}
	return out, nil
}
