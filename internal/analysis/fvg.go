package analysis

import "signal-sniper/internal/market"

// FVGType represents the direction of a Fair Value Gap
type FVGType string

const (
	BullishFVG FVGType = "bullish"
	BearishFVG FVGType = "bearish"
)

// FVG represents a three-candle price imbalance. The first and third
// candle ranges do not overlap, leaving a zone the market skipped over.
type FVG struct {
	Type        FVGType `json:"type"`
	TopPrice    float64 `json:"topPrice"`
	BottomPrice float64 `json:"bottomPrice"`
	CandleIndex int     `json:"candleIndex"`
	Age         int     `json:"age"`
}

// FVGDetector detects Fair Value Gaps in candlestick data
type FVGDetector struct {
	minGapPercent float64 // Minimum gap size as percentage of price
	maxAge        int     // Gaps older than this many bars are dropped
}

// NewFVGDetector creates a new FVG detector
func NewFVGDetector(minGapPercent float64, maxAge int) *FVGDetector {
	if minGapPercent <= 0 {
		minGapPercent = 0.1
	}
	if maxAge <= 0 {
		maxAge = 30
	}
	return &FVGDetector{
		minGapPercent: minGapPercent,
		maxAge:        maxAge,
	}
}

// DetectFVGs identifies all Fair Value Gaps younger than the age
// cutoff. Expiry is purely age based: price trading back through a gap
// does not remove it before the cutoff.
func (fd *FVGDetector) DetectFVGs(candles []market.Candle) []FVG {
	if len(candles) < 3 {
		return nil
	}

	var fvgs []FVG
	last := len(candles) - 1

	for i := 0; i < len(candles)-2; i++ {
		c1 := candles[i]
		c3 := candles[i+2]

		// Age counts bars since the middle candle of the pattern.
		age := last - (i + 1)
		if age > fd.maxAge {
			continue
		}

		// Bullish FVG: gap between first candle's high and third's low
		if c1.High < c3.Low && c1.High > 0 {
			gapSize := ((c3.Low - c1.High) / c1.High) * 100
			if gapSize >= fd.minGapPercent {
				fvgs = append(fvgs, FVG{
					Type:        BullishFVG,
					TopPrice:    c3.Low,
					BottomPrice: c1.High,
					CandleIndex: i,
					Age:         age,
				})
			}
		}

		// Bearish FVG: gap between first candle's low and third's high
		if c1.Low > c3.High && c3.High > 0 {
			gapSize := ((c1.Low - c3.High) / c3.High) * 100
			if gapSize >= fd.minGapPercent {
				fvgs = append(fvgs, FVG{
					Type:        BearishFVG,
					TopPrice:    c1.Low,
					BottomPrice: c3.High,
					CandleIndex: i,
					Age:         age,
				})
			}
		}
	}

	return fvgs
}

// IsPriceInFVG checks if current price is within an FVG zone
func (fd *FVGDetector) IsPriceInFVG(price float64, fvg FVG) bool {
	return price >= fvg.BottomPrice && price <= fvg.TopPrice
}

// NearestFVG returns the most recent gap containing the price, or nil
// when price sits outside every active gap.
func (fd *FVGDetector) NearestFVG(fvgs []FVG, price float64) *FVG {
	for i := len(fvgs) - 1; i >= 0; i-- {
		if fd.IsPriceInFVG(price, fvgs[i]) {
			return &fvgs[i]
		}
	}
	return nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
