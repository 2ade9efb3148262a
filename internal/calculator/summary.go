package calculator

import (
	"github.com/rs/zerolog/log"

	"StockAssistant/internal/model"
)

// Summarize computes the headline statistics for a daily series. Individual
// indicator failures fall back to neutral values.
func Summarize(bars []model.OHLCV) model.Summary {
	var s model.Summary
	if len(bars) == 0 {
		return s
	}
	s.LastClose = bars[len(bars)-1].Close
	s.PrevClose = s.LastClose
	if len(bars) > 1 {
		s.PrevClose = bars[len(bars)-2].Close
	}
	if s.PrevClose != 0 {
		s.ChangePct = s.LastClose*100/s.PrevClose - 100
	}

	if h, l, err := Calculate52WeekRange(bars); err != nil {
		log.Warn().Err(err).Msg("52-week range calculation failed")
		s.High52w, s.Low52w = s.LastClose, s.LastClose
	} else {
		s.High52w, s.Low52w = h, l
	}

	if pos, err := Calculate52WeekPosition(s.LastClose, s.High52w, s.Low52w); err != nil {
		log.Warn().Err(err).Msg("52-week position calculation failed")
		s.Position52w = 0.5
	} else {
		s.Position52w = pos
	}

	if rsi, err := CalculateRSI(bars, 14); err != nil {
		log.Warn().Err(err).Msg("RSI calculation failed, defaulting to 50")
		s.RSI14 = 50
	} else {
		s.RSI14 = rsi
	}
	return s
}
