package exchange

import "sort"

// book holds the resting orders for one trading pair. bids sort by price
// descending then arrival ascending; asks sort by price ascending then
// arrival ascending — both price-time priority.
type book struct {
	bids []*Order
	asks []*Order
}

func newBook() *book {
	return &book{}
}

func (b *book) insert(o *Order) {
	switch o.Side {
	case Bid:
		b.bids = append(b.bids, o)
		sort.SliceStable(b.bids, func(i, j int) bool {
			c := b.bids[i].Price.Cmp(*b.bids[j].Price)
			if c != 0 {
				return c > 0
			}
			return b.bids[i].seq < b.bids[j].seq
		})
	case Ask:
		b.asks = append(b.asks, o)
		sort.SliceStable(b.asks, func(i, j int) bool {
			c := b.asks[i].Price.Cmp(*b.asks[j].Price)
			if c != 0 {
				return c < 0
			}
			return b.asks[i].seq < b.asks[j].seq
		})
	}
}

func (b *book) popBidFront() {
	b.bids = b.bids[1:]
}

func (b *book) popAskFront() {
	b.asks = b.asks[1:]
}

func (b *book) removeAsk(o *Order) {
	for i, a := range b.asks {
		if a == o {
			b.asks = append(b.asks[:i], b.asks[i+1:]...)
			return
		}
	}
}

func (b *book) removeBid(o *Order) {
	for i, bid := range b.bids {
		if bid == o {
			b.bids = append(b.bids[:i], b.bids[i+1:]...)
			return
		}
	}
}

// Snapshot returns copies of the resting orders, safe to read without the
// engine's writer lock held.
type Snapshot struct {
	Bids []Order
	Asks []Order
}

func (b *book) snapshot() Snapshot {
	s := Snapshot{Bids: make([]Order, len(b.bids)), Asks: make([]Order, len(b.asks))}
	for i, o := range b.bids {
		s.Bids[i] = *o
	}
	for i, o := range b.asks {
		s.Asks[i] = *o
	}
	return s
}
