package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type walletDocument struct {
	CurrencyCode string      `json:"currency_code"`
	Balance      json.Number `json:"balance"`
}

type portfolioDocument struct {
	UserID  string                    `json:"user_id"`
	Wallets map[string]walletDocument `json:"wallets"`
}

// PortfolioRepository stores every portfolio in a single list document.
type PortfolioRepository struct {
	store portsrepo.KVStore
	mu    sync.Mutex
}

var _ portsrepo.PortfolioRepositoryFacade = (*PortfolioRepository)(nil)

// NewPortfolioRepository creates a new PortfolioRepository.
func NewPortfolioRepository(store portsrepo.KVStore) *PortfolioRepository {
	return &PortfolioRepository{store: store}
}

func (r *PortfolioRepository) load(ctx context.Context) ([]portfolioDocument, error) {
	var docs []portfolioDocument
	if _, err := loadDocument(ctx, r.store, portsrepo.PortfoliosKey, &docs); err != nil {
		return nil, fmt.Errorf("failed to load portfolios: %w", err)
	}
	return docs, nil
}

func (r *PortfolioRepository) FindPortfolioByUserID(ctx context.Context, userID string) (*domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.UserID == userID {
			return toPortfolio(d)
		}
	}
	return nil, fmt.Errorf("%w: portfolio for user %s", apperrors.ErrNotFound, userID)
}

func (r *PortfolioRepository) SavePortfolio(ctx context.Context, portfolio *domain.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load(ctx)
	if err != nil {
		return err
	}

	doc := fromPortfolio(portfolio)
	replaced := false
	for i := range docs {
		if docs[i].UserID == portfolio.UserID {
			docs[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, doc)
	}

	if err := saveDocument(ctx, r.store, portsrepo.PortfoliosKey, docs); err != nil {
		return fmt.Errorf("failed to persist portfolios: %w", err)
	}
	return nil
}

func toPortfolio(d portfolioDocument) (*domain.Portfolio, error) {
	p := domain.NewPortfolio(d.UserID)
	for code, w := range d.Wallets {
		balance, err := decimal.NewFromString(w.Balance.String())
		if err != nil {
			return nil, fmt.Errorf("wallet %s of user %s has invalid balance: %w", code, d.UserID, err)
		}
		wallet, err := domain.NewWallet(code, balance)
		if err != nil {
			return nil, fmt.Errorf("wallet %s of user %s: %w", code, d.UserID, err)
		}
		p.Wallets[code] = wallet
	}
	return p, nil
}

func fromPortfolio(p *domain.Portfolio) portfolioDocument {
	d := portfolioDocument{UserID: p.UserID, Wallets: make(map[string]walletDocument, len(p.Wallets))}
	for code, w := range p.Wallets {
		d.Wallets[code] = walletDocument{CurrencyCode: code, Balance: json.Number(w.Balance.String())}
	}
	return d
}
