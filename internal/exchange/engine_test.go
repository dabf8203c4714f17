package exchange

import (
	"testing"

	"github.com/ledgersim/ledgersim/pkg/types"
)

func mustAmount(t *testing.T, s string) types.Amount {
	t.Helper()
	a, err := types.ParseAmount(s)
	if err != nil {
		t.Fatalf("parse amount %q: %v", s, err)
	}
	return a
}

func TestPlaceLimitRejectsUnknownMarket(t *testing.T) {
	e := New()
	_, err := e.PlaceLimit("alice", "SIM/USD", Bid, mustAmount(t, "1"), mustAmount(t, "1"))
	re, ok := err.(*RejectError)
	if !ok || re.Kind != MarketNotFound {
		t.Fatalf("expected MarketNotFound, got %v", err)
	}
}

func TestPlaceLimitRejectsInsufficientFunds(t *testing.T) {
	e := New()
	e.RegisterMarket("SIM/USD")
	_, err := e.PlaceLimit("alice", "SIM/USD", Bid, mustAmount(t, "10"), mustAmount(t, "1"))
	re, ok := err.(*RejectError)
	if !ok || re.Kind != InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
}

func TestPlaceLimitFullyFillingOrdersClearBothSides(t *testing.T) {
	e := New()
	e.RegisterMarket("SIM/USD")
	if err := e.Deposit("alice", "USD", mustAmount(t, "100")); err != nil {
		t.Fatal(err)
	}
	if err := e.Deposit("bob", "SIM", mustAmount(t, "10")); err != nil {
		t.Fatal(err)
	}

	trades, err := e.PlaceLimit("bob", "SIM/USD", Ask, mustAmount(t, "10"), mustAmount(t, "10"))
	if err != nil {
		t.Fatalf("place ask: %v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("expected no trade yet, got %d", len(trades))
	}

	trades, err = e.PlaceLimit("alice", "SIM/USD", Bid, mustAmount(t, "10"), mustAmount(t, "10"))
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	snap, err := e.OrderBook("SIM/USD")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Bids) != 0 || len(snap.Asks) != 0 {
		t.Fatalf("expected both sides empty after a fully-filling match, got bids=%d asks=%d", len(snap.Bids), len(snap.Asks))
	}

	aliceBalances := e.Balances("alice")
	if got := aliceBalances["SIM"]; got.Cmp(mustAmount(t, "10")) != 0 {
		t.Fatalf("alice SIM = %s, want 10", got)
	}
	bobBalances := e.Balances("bob")
	if got := bobBalances["USD"]; got.Cmp(mustAmount(t, "100")) != 0 {
		t.Fatalf("bob USD = %s, want 100", got)
	}
}

func TestPlaceMarketRejectsWhenUnfillable(t *testing.T) {
	e := New()
	e.RegisterMarket("SIM/USD")
	e.Deposit("alice", "USD", mustAmount(t, "100"))
	_, err := e.PlaceMarket("alice", "SIM/USD", Bid, mustAmount(t, "1"))
	re, ok := err.(*RejectError)
	if !ok || re.Kind != Unfillable {
		t.Fatalf("expected Unfillable, got %v", err)
	}
}

func TestPlaceLimitRejectsNonPositiveAmount(t *testing.T) {
	e := New()
	e.RegisterMarket("SIM/USD")
	_, err := e.PlaceLimit("alice", "SIM/USD", Bid, mustAmount(t, "1"), mustAmount(t, "0"))
	re, ok := err.(*RejectError)
	if !ok || re.Kind != InvalidOrder {
		t.Fatalf("expected InvalidOrder, got %v", err)
	}
}
