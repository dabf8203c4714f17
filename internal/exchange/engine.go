// Package exchange implements the in-memory price-time priority limit
// order matching engine and its per-user multi-asset balance sheet.
package exchange

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// Engine is the single-writer matching engine: every mutation to a book or
// to the balance sheet happens under mu. It performs no I/O while holding
// the lock.
type Engine struct {
	mu       sync.Mutex
	books    map[string]*book
	balances *balanceSheet
	journal  *journal
	nextSeq  uint64
}

// New creates an empty matching engine.
func New() *Engine {
	return &Engine{
		books:    make(map[string]*book),
		balances: newBalanceSheet(),
		journal:  newJournal(),
	}
}

// RegisterMarket opens a pair for trading. Idempotent: registering an
// already-open pair is a no-op.
func (e *Engine) RegisterMarket(pair string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.books[pair]; !ok {
		e.books[pair] = newBook()
	}
}

func splitPair(pair string) (base, quote string, ok bool) {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Deposit credits a user's balance for asset, used to fund accounts before
// trading. Balances here are a standalone ledger with no on-chain linkage.
func (e *Engine) Deposit(user, asset string, amount types.Amount) error {
	if !amount.IsPositive() {
		return reject(InvalidOrder, "deposit amount must be positive")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances.credit(user, asset, amount)
	return nil
}

// Balances returns a snapshot of a user's per-asset balances.
func (e *Engine) Balances(user string) map[string]types.Amount {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balances.snapshot(user)
}

// OrderBook returns a snapshot of the resting orders for pair.
func (e *Engine) OrderBook(pair string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.books[pair]
	if !ok {
		return Snapshot{}, reject(MarketNotFound, "%s", pair)
	}
	return b.snapshot(), nil
}

// RecentTrades returns up to limit of the most recent trades for pair.
func (e *Engine) RecentTrades(pair string, limit int) ([]Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.books[pair]; !ok {
		return nil, reject(MarketNotFound, "%s", pair)
	}
	return e.journal.recent(pair, limit), nil
}

// PlaceLimit implements place_limit: verify the market and the placing
// user's balance, insert into the book, then run the match loop.
func (e *Engine) PlaceLimit(userID, pair string, side Side, price, amount types.Amount) ([]Trade, error) {
	if !amount.IsPositive() || !price.IsPositive() {
		return nil, reject(InvalidOrder, "amount and price must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.books[pair]
	if !ok {
		return nil, reject(MarketNotFound, "%s", pair)
	}
	base, quote, ok := splitPair(pair)
	if !ok {
		return nil, reject(MarketNotFound, "%s", pair)
	}

	switch side {
	case Bid:
		required := amount.Mul(price)
		if e.balances.get(userID, quote).Cmp(required) < 0 {
			return nil, reject(InsufficientFunds, "insufficient %s", quote)
		}
	case Ask:
		if e.balances.get(userID, base).Cmp(amount) < 0 {
			return nil, reject(InsufficientFunds, "insufficient %s", base)
		}
	default:
		return nil, reject(InvalidOrder, "unknown side %q", side)
	}

	o := &Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Pair:      pair,
		Side:      side,
		Price:     &price,
		Amount:    amount,
		Timestamp: time.Now().Unix(),
		seq:       e.nextSeq,
	}
	e.nextSeq++
	b.insert(o)

	return e.matchLimit(pair), nil
}

// PlaceMarket implements place_market: no resting price, walk the opposite
// book in priority order. A bid fills each ask level in full (up to the
// remaining amount) while the taker's quote balance covers that whole fill,
// and stops at the first level it cannot fully pay for; that level is not
// partially filled. An ask is rejected with InsufficientFunds unless the
// taker holds the whole amount in base inventory. Rejects if nothing fills.
func (e *Engine) PlaceMarket(userID, pair string, side Side, amount types.Amount) ([]Trade, error) {
	if !amount.IsPositive() {
		return nil, reject(InvalidOrder, "amount must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.books[pair]
	if !ok {
		return nil, reject(MarketNotFound, "%s", pair)
	}
	base, quote, ok := splitPair(pair)
	if !ok {
		return nil, reject(MarketNotFound, "%s", pair)
	}

	remaining := amount
	var trades []Trade

	switch side {
	case Bid:
		for remaining.IsPositive() && len(b.asks) > 0 {
			ask := b.asks[0]
			fillAmount := remaining
			if ask.Amount.Cmp(fillAmount) < 0 {
				fillAmount = ask.Amount
			}
			requiredQuote := fillAmount.Mul(*ask.Price)
			if e.balances.get(userID, quote).Cmp(requiredQuote) < 0 {
				break
			}
			t := e.settle(userID, ask.UserID, *ask.Price, fillAmount, pair)
			trades = append(trades, t)
			remaining = remaining.Sub(fillAmount)
			ask.Amount = ask.Amount.Sub(fillAmount)
			if ask.Amount.IsZero() {
				b.popAskFront()
			}
		}
	case Ask:
		if e.balances.get(userID, base).Cmp(amount) < 0 {
			return nil, reject(InsufficientFunds, "insufficient %s", base)
		}
		for remaining.IsPositive() && len(b.bids) > 0 {
			bid := b.bids[0]
			fillAmount := remaining
			if bid.Amount.Cmp(fillAmount) < 0 {
				fillAmount = bid.Amount
			}
			t := e.settle(bid.UserID, userID, *bid.Price, fillAmount, pair)
			trades = append(trades, t)
			remaining = remaining.Sub(fillAmount)
			bid.Amount = bid.Amount.Sub(fillAmount)
			if bid.Amount.IsZero() {
				b.popBidFront()
			}
		}
	default:
		return nil, reject(InvalidOrder, "unknown side %q", side)
	}

	if len(trades) == 0 {
		return nil, reject(Unfillable, "no counterparty for market order on %s", pair)
	}
	return trades, nil
}

// matchLimit implements match_limit: while top-of-bids price is at least
// top-of-asks price, settle min(bid.amount, ask.amount) at the resting
// order's price. As a deterministic simplification this always uses the
// ask's price, since the ask is assumed to be the resting side whenever
// both sit in the book (documented decision, not derivable from arrival
// order alone once both rest simultaneously).
func (e *Engine) matchLimit(pair string) []Trade {
	b := e.books[pair]
	var trades []Trade
	for len(b.bids) > 0 && len(b.asks) > 0 {
		bid, ask := b.bids[0], b.asks[0]
		if bid.Price.Cmp(*ask.Price) < 0 {
			break
		}
		tradePrice := *ask.Price
		tradeAmount := bid.Amount
		if ask.Amount.Cmp(tradeAmount) < 0 {
			tradeAmount = ask.Amount
		}

		t := e.settle(bid.UserID, ask.UserID, tradePrice, tradeAmount, pair)
		trades = append(trades, t)

		bid.Amount = bid.Amount.Sub(tradeAmount)
		ask.Amount = ask.Amount.Sub(tradeAmount)
		if bid.Amount.IsZero() {
			b.popBidFront()
		}
		if ask.Amount.IsZero() {
			b.popAskFront()
		}
	}
	return trades
}

// settle implements settle: debit/credit both sides of the trade and
// append it to the pair's journal. Caller must hold e.mu.
func (e *Engine) settle(buyer, seller string, price, amount types.Amount, pair string) Trade {
	base, quote, _ := splitPair(pair)
	quoteValue := amount.Mul(price)

	e.balances.debit(buyer, quote, quoteValue)
	e.balances.credit(buyer, base, amount)
	e.balances.debit(seller, base, amount)
	e.balances.credit(seller, quote, quoteValue)

	t := Trade{
		Pair:      pair,
		Price:     price,
		Amount:    amount,
		Timestamp: time.Now().Unix(),
		BuyerID:   buyer,
		SellerID:  seller,
	}
	e.journal.append(t)
	return t
}
