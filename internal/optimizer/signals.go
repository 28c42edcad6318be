package optimizer

import (
	"signal-sniper/internal/indicators"
	"signal-sniper/internal/signal"
)

// signalEvent marks a simulated entry derived from an indicator
// threshold crossing.
type signalEvent struct {
	index     int
	direction signal.Direction
}

// rsiSignals emits a buy when RSI crosses up out of the oversold zone
// and a sell when it crosses down out of the overbought zone.
func rsiSignals(rsi []float64, overbought, oversold float64) []signalEvent {
	var events []signalEvent
	for i := 1; i < len(rsi); i++ {
		if !indicators.Valid(rsi[i-1]) || !indicators.Valid(rsi[i]) {
			continue
		}
		if rsi[i-1] <= oversold && rsi[i] > oversold {
			events = append(events, signalEvent{index: i, direction: signal.DirectionUp})
		}
		if rsi[i-1] >= overbought && rsi[i] < overbought {
			events = append(events, signalEvent{index: i, direction: signal.DirectionDown})
		}
	}
	return events
}

// macdSignals emits on MACD line crossings of its signal line.
func macdSignals(macd, signalLine []float64) []signalEvent {
	var events []signalEvent
	for i := 1; i < len(macd); i++ {
		if !indicators.Valid(macd[i-1]) || !indicators.Valid(macd[i]) ||
			!indicators.Valid(signalLine[i-1]) || !indicators.Valid(signalLine[i]) {
			continue
		}
		if macd[i-1] <= signalLine[i-1] && macd[i] > signalLine[i] {
			events = append(events, signalEvent{index: i, direction: signal.DirectionUp})
		}
		if macd[i-1] >= signalLine[i-1] && macd[i] < signalLine[i] {
			events = append(events, signalEvent{index: i, direction: signal.DirectionDown})
		}
	}
	return events
}

// bollingerSignals emits mean-reversion entries when price crosses
// back inside a band.
func bollingerSignals(closes, upper, lower []float64) []signalEvent {
	var events []signalEvent
	for i := 1; i < len(closes); i++ {
		if !indicators.Valid(upper[i]) || !indicators.Valid(lower[i]) ||
			!indicators.Valid(upper[i-1]) || !indicators.Valid(lower[i-1]) {
			continue
		}
		if closes[i-1] <= lower[i-1] && closes[i] > lower[i] {
			events = append(events, signalEvent{index: i, direction: signal.DirectionUp})
		}
		if closes[i-1] >= upper[i-1] && closes[i] < upper[i] {
			events = append(events, signalEvent{index: i, direction: signal.DirectionDown})
		}
	}
	return events
}

// stochasticSignals emits on %K/%D crossings inside the extreme zones.
func stochasticSignals(k, d []float64) []signalEvent {
	const (
		oversoldZone   = 20.0
		overboughtZone = 80.0
	)

	var events []signalEvent
	for i := 1; i < len(k); i++ {
		if !indicators.Valid(k[i-1]) || !indicators.Valid(k[i]) ||
			!indicators.Valid(d[i-1]) || !indicators.Valid(d[i]) {
			continue
		}
		if k[i-1] <= d[i-1] && k[i] > d[i] && k[i-1] < oversoldZone {
			events = append(events, signalEvent{index: i, direction: signal.DirectionUp})
		}
		if k[i-1] >= d[i-1] && k[i] < d[i] && k[i-1] > overboughtZone {
			events = append(events, signalEvent{index: i, direction: signal.DirectionDown})
		}
	}
	return events
}
