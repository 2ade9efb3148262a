package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockAssistant/internal/forecast"
	"StockAssistant/internal/model"
)

// DigestLine is one watchlist row: a forecast or the reason it is missing.
type DigestLine struct {
	Emiten model.Emiten
	Result *forecast.Result
	Err    string
}

// FormatForecast formats a single forecast into a Telegram message.
func FormatForecast(em model.Emiten, res *forecast.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔮 <b>%s</b> %s\n\n", html.EscapeString(em.Code), html.EscapeString(em.Name)))
	b.WriteString(fmt.Sprintf("Last close: %.2f\n", res.LastActual))
	b.WriteString(fmt.Sprintf("Forecast %s: %.2f (%+.2f%%)\n", res.Next.Date.Format("2006-01-02"), res.Next.Value, res.PercentChange))
	b.WriteString(fmt.Sprintf("RMSE: %.2f\n", res.RMSE))
	if res.Clamped {
		b.WriteString(fmt.Sprintf("⚠️ Clamped to the %.0f%% auto-rejection band\n", res.Cap))
	}
	return b.String()
}

// FormatEmiten formats a catalog entry.
func FormatEmiten(em model.Emiten) string {
	return fmt.Sprintf("🏢 <b>%s</b>\n%s", html.EscapeString(em.Code), html.EscapeString(em.Name))
}

// FormatDigest formats the daily watchlist forecast digest.
func FormatDigest(day time.Time, lines []DigestLine) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Daily forecast</b> | %s\n\n", day.Format("2006-01-02")))
	if len(lines) == 0 {
		b.WriteString("Watchlist is empty.\n")
		return b.String()
	}
	for _, l := range lines {
		code := html.EscapeString(l.Emiten.Code)
		if l.Result == nil {
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", code, html.EscapeString(l.Err)))
			continue
		}
		mark := "▲"
		if l.Result.PercentChange < 0 {
			mark = "▼"
		}
		line := fmt.Sprintf("%s %s: %.2f → %.2f (%+.2f%%)", mark, code, l.Result.LastActual, l.Result.Next.Value, l.Result.PercentChange)
		if l.Result.Clamped {
			line += " [clamped]"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatHelp lists the chat commands.
func FormatHelp() string {
	return "Available commands:\n• /forecast CODE\n• /emiten CODE\n• /watchlist"
}
