package analysis

import (
	"testing"

	"signal-sniper/internal/market"
)

func bullishCandle(base float64) market.Candle {
	return market.Candle{Open: base, High: base + 2, Low: base - 1, Close: base + 1.5, Volume: 1000}
}

func bearishCandle(base float64) market.Candle {
	return market.Candle{Open: base, High: base + 1, Low: base - 2, Close: base - 1.5, Volume: 1000}
}

// TestDetectBullishOrderBlock verifies a bearish candle followed by
// three bullish candles is flagged as a bullish block.
func TestDetectBullishOrderBlock(t *testing.T) {
	detector := NewOrderBlockDetector(50)

	candles := []market.Candle{
		bearishCandle(100),
		bullishCandle(99),
		bullishCandle(101),
		bullishCandle(103),
	}

	blocks := detector.DetectOrderBlocks(candles)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 order block, got %d", len(blocks))
	}
	if blocks[0].Type != BullishOrderBlock {
		t.Errorf("Expected bullish block, got %s", blocks[0].Type)
	}
	if blocks[0].High != 101 || blocks[0].Low != 98 {
		t.Errorf("Unexpected block range [%f, %f]", blocks[0].Low, blocks[0].High)
	}
}

// TestDetectBearishOrderBlock verifies the mirror pattern.
func TestDetectBearishOrderBlock(t *testing.T) {
	detector := NewOrderBlockDetector(50)

	candles := []market.Candle{
		bullishCandle(100),
		bearishCandle(101),
		bearishCandle(99),
		bearishCandle(97),
	}

	blocks := detector.DetectOrderBlocks(candles)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 order block, got %d", len(blocks))
	}
	if blocks[0].Type != BearishOrderBlock {
		t.Errorf("Expected bearish block, got %s", blocks[0].Type)
	}
}

// TestOrderBlockRequiresThreeConfirmations verifies that two opposite
// candles are not enough.
func TestOrderBlockRequiresThreeConfirmations(t *testing.T) {
	detector := NewOrderBlockDetector(50)

	candles := []market.Candle{
		bearishCandle(100),
		bullishCandle(99),
		bullishCandle(101),
		bearishCandle(103),
	}

	if blocks := detector.DetectOrderBlocks(candles); len(blocks) != 0 {
		t.Errorf("Expected no blocks with broken confirmation run, got %d", len(blocks))
	}
}

// TestOrderBlockAgeExpiry verifies blocks older than the cutoff drop out.
func TestOrderBlockAgeExpiry(t *testing.T) {
	detector := NewOrderBlockDetector(50)

	candles := []market.Candle{
		bearishCandle(100),
		bullishCandle(99),
		bullishCandle(101),
		bullishCandle(103),
	}
	for i := 0; i < 55; i++ {
		candles = append(candles, market.Candle{Open: 105, High: 106, Low: 104, Close: 105, Volume: 500})
	}

	if blocks := detector.DetectOrderBlocks(candles); len(blocks) != 0 {
		t.Errorf("Expected aged block to expire, got %d blocks", len(blocks))
	}
}

// TestOrderBlockSurvivesReentry verifies that price closing back
// through a block does not invalidate it while it is within the age
// cutoff.
func TestOrderBlockSurvivesReentry(t *testing.T) {
	detector := NewOrderBlockDetector(50)

	candles := []market.Candle{
		bearishCandle(100), // block range [98, 101]
		bullishCandle(99),
		bullishCandle(101),
		bullishCandle(103),
		{Open: 104, High: 105, Low: 95, Close: 96, Volume: 1000}, // closes below 98
	}

	blocks := detector.DetectOrderBlocks(candles)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}

	active := detector.NearestActiveBlock(blocks, 99)
	if active == nil {
		t.Fatal("Expected block to stay active after price re-entry")
	}
	if active.Type != BullishOrderBlock {
		t.Errorf("Expected bullish block, got %s", active.Type)
	}
}
