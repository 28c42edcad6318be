package analysis

import "signal-sniper/internal/market"

// OrderBlockType represents the direction an order block supports
type OrderBlockType string

const (
	BullishOrderBlock OrderBlockType = "bullish"
	BearishOrderBlock OrderBlockType = "bearish"
)

// OrderBlock is a single candle whose range acted as an accumulation
// zone, confirmed by three consecutive candles in the opposite
// direction immediately after it.
type OrderBlock struct {
	Type        OrderBlockType `json:"type"`
	High        float64        `json:"high"`
	Low         float64        `json:"low"`
	CandleIndex int            `json:"candleIndex"`
	Age         int            `json:"age"`
}

// OrderBlockDetector detects institutional order blocks
type OrderBlockDetector struct {
	maxAge int // Blocks older than this many bars are dropped
}

// NewOrderBlockDetector creates a new order block detector
func NewOrderBlockDetector(maxAge int) *OrderBlockDetector {
	if maxAge <= 0 {
		maxAge = 50
	}
	return &OrderBlockDetector{maxAge: maxAge}
}

// DetectOrderBlocks scans the history for order blocks younger than
// the age cutoff. A bullish block is a bearish candle followed by
// three bullish candles; a bearish block is the mirror image.
func (od *OrderBlockDetector) DetectOrderBlocks(candles []market.Candle) []OrderBlock {
	if len(candles) < 4 {
		return nil
	}

	var blocks []OrderBlock
	last := len(candles) - 1

	for i := 0; i <= last-3; i++ {
		age := last - i
		if age > od.maxAge {
			continue
		}

		c := candles[i]
		confirm := candles[i+1 : i+4]

		if c.IsBearish() && allBullish(confirm) {
			blocks = append(blocks, OrderBlock{
				Type:        BullishOrderBlock,
				High:        c.High,
				Low:         c.Low,
				CandleIndex: i,
				Age:         age,
			})
		} else if c.IsBullish() && allBearish(confirm) {
			blocks = append(blocks, OrderBlock{
				Type:        BearishOrderBlock,
				High:        c.High,
				Low:         c.Low,
				CandleIndex: i,
				Age:         age,
			})
		}
	}

	return blocks
}

// NearestActiveBlock returns the most recent block whose range
// contains the price, or nil when none applies. Blocks stay active
// until they age out; price trading back through the range does not
// invalidate them.
func (od *OrderBlockDetector) NearestActiveBlock(blocks []OrderBlock, price float64) *OrderBlock {
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if price >= b.Low && price <= b.High {
			return &blocks[i]
		}
	}
	return nil
}

func allBullish(candles []market.Candle) bool {
	for _, c := range candles {
		if !c.IsBullish() {
			return false
		}
	}
	return true
}

func allBearish(candles []market.Candle) bool {
	for _, c := range candles {
		if !c.IsBearish() {
			return false
		}
	}
	return true
}
