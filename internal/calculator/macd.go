package calculator

import "errors"

// MACDSeries computes the MACD line (fast EMA minus slow EMA) and its signal
// line (EMA of the MACD line) for every input index. Entries before the slow
// period plus the signal period are zero.
func MACDSeries(prices []float64, fast, slow, signal int) (macd, signalLine []float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, nil, errors.New("periods must be positive")
	}
	if fast >= slow {
		return nil, nil, errors.New("fast period must be shorter than slow period")
	}

	fastEMA, err := EMASeries(prices, fast)
	if err != nil {
		return nil, nil, err
	}
	slowEMA, err := EMASeries(prices, slow)
	if err != nil {
		return nil, nil, err
	}

	macd = make([]float64, len(prices))
	if len(prices) < slow {
		return macd, make([]float64, len(prices)), nil
	}
	for i := slow - 1; i < len(prices); i++ {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	// Signal line smooths the MACD values that exist from slow-1 onward.
	tail, err := EMASeries(macd[slow-1:], signal)
	if err != nil {
		return nil, nil, err
	}
	signalLine = make([]float64, len(prices))
	copy(signalLine[slow-1:], tail)
	return macd, signalLine, nil
}
