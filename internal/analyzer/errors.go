package analyzer

import (
	"context"
	"errors"

	"StockAssistant/internal/catalog"
	"StockAssistant/internal/forecast"
)

// ErrDataUnavailable means price history could not be fetched or was empty.
var ErrDataUnavailable = errors.New("price data unavailable")

// Error kinds reported to users, metrics and the forecast log.
const (
	KindDataUnavailable     = "data_unavailable"
	KindInsufficientHistory = "insufficient_history"
	KindFitError            = "fit_error"
	KindUnknownEmiten       = "unknown_emiten"
	KindInternal            = "internal"
)

// Kind classifies err into one of the Kind constants.
func Kind(err error) string {
	switch {
	case errors.Is(err, catalog.ErrUnknownEmiten):
		return KindUnknownEmiten
	case errors.Is(err, ErrDataUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return KindDataUnavailable
	case errors.Is(err, forecast.ErrInsufficientHistory):
		return KindInsufficientHistory
	case errors.Is(err, forecast.ErrFit):
		return KindFitError
	default:
		return KindInternal
	}
}

// Message is a sentence fit to show an end user in place of a forecast.
func Message(err error) string {
	switch Kind(err) {
	case KindUnknownEmiten:
		return "This emiten code is not in the catalog."
	case KindDataUnavailable:
		return "Price data is unavailable right now. Please try again later."
	case KindInsufficientHistory:
		return "Not enough price history to fit a forecast for this emiten."
	case KindFitError:
		return "The forecast model could not be fitted to this price history."
	default:
		return "The forecast could not be computed."
	}
}
