package notifier

import (
	"fmt"
	"html"
	"strings"

	"CryptoSignals/internal/model"
)

// Lang selects the notification language.
type Lang string

const (
	LangEN Lang = "en"
	LangAR Lang = "ar"
)

// Languages lists every supported language, in dispatch order.
var Languages = []Lang{LangEN, LangAR}

// Message is a push notification title and body.
type Message struct {
	Title string
	Body  string
}

// Format renders an event in the given language. The new-signal message shows the
// entry zone and targets only; the stop loss is intentionally left out.
func Format(ev model.Event, lang Lang) Message {
	sym := ev.Meta().Symbol
	ar := lang == LangAR

	switch e := ev.(type) {
	case *model.NewSignalEvent:
		ts := e.Signal.TradeSetup
		if ar {
			return Message{
				Title: fmt.Sprintf("🟢 توصية شراء: %s", sym),
				Body: fmt.Sprintf("نرى فرصة ممتازة لشراء %s 🚀\n💰 منطقة الدخول: %s\n\n🎯 الأهداف المتوقعة:\n1️⃣ %.4f\n2️⃣ %.4f\n\n📊 قوة التوصية: %d/100",
					sym, ts.EntryZone, ts.Target1, ts.Target2, e.Signal.Score),
			}
		}
		return Message{
			Title: fmt.Sprintf("🟢 Buy Recommendation: %s", sym),
			Body: fmt.Sprintf("Great opportunity to buy %s 🚀\n💰 Entry Zone: %s\n\n🎯 Targets:\n1️⃣ %.4f\n2️⃣ %.4f\n\n📊 Confidence: %d/100",
				sym, ts.EntryZone, ts.Target1, ts.Target2, e.Signal.Score),
		}

	case *model.TP1HitEvent:
		if ar {
			return Message{
				Title: fmt.Sprintf("🚀 تم تحقيق الهدف الأول: %s", sym),
				Body:  fmt.Sprintf("عملة %s حققت الهدف الأول! الربح: +%.2f%%", sym, e.GainPct),
			}
		}
		return Message{
			Title: fmt.Sprintf("🚀 TP1 HIT: %s", sym),
			Body:  fmt.Sprintf("%s hit Target 1! Gain: +%.2f%%", sym, e.GainPct),
		}

	case *model.TP2HitEvent:
		if ar {
			return Message{
				Title: fmt.Sprintf("🚀🚀 تم تحقيق الهدف الثاني: %s", sym),
				Body:  fmt.Sprintf("عملة %s حققت الهدف الثاني! الربح: +%.2f%%", sym, e.GainPct),
			}
		}
		return Message{
			Title: fmt.Sprintf("🚀🚀 TP2 HIT: %s", sym),
			Body:  fmt.Sprintf("%s hit Target 2! Gain: +%.2f%%", sym, e.GainPct),
		}

	case *model.ExitEvent:
		if ar {
			return Message{
				Title: fmt.Sprintf("🛑 تنبيه خروج: %s", sym),
				Body:  fmt.Sprintf("عملة %s وصلت لمنطقة الخروج. الربح: %.2f%%", sym, e.GainPct),
			}
		}
		return Message{
			Title: fmt.Sprintf("🛑 EXIT ALERT: %s", sym),
			Body:  fmt.Sprintf("%s reached exit zone. Gain: %.2f%%", sym, e.GainPct),
		}

	case *model.PeriodicUpdateEvent:
		if ar {
			return Message{
				Title: fmt.Sprintf("📈 تحديث: %s", sym),
				Body:  fmt.Sprintf("عملة %s ارتفعت بنسبة +%.2f%%", sym, e.GainPct),
			}
		}
		return Message{
			Title: fmt.Sprintf("📈 UPDATE: %s", sym),
			Body:  fmt.Sprintf("%s is up +%.2f%%", sym, e.GainPct),
		}
	}
	return Message{Title: string(ev.Kind()), Body: sym}
}

// FormatTest is the message sent by the test-notification endpoint.
func FormatTest(lang Lang) Message {
	if lang == LangAR {
		return Message{Title: "إشعار تجريبي", Body: "هذه رسالة تجريبية من سيرفر الكريبتو الخاص بك (عربي)."}
	}
	return Message{Title: "Test Notification", Body: "This is a test message from your Crypto Server (English)."}
}

// FormatHTML renders an event as a Telegram HTML message.
func FormatHTML(ev model.Event) string {
	msg := Format(ev, LangEN)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(msg.Title), html.EscapeString(msg.Body)))
	if e, ok := ev.(*model.NewSignalEvent); ok && len(e.Signal.Reasons) > 0 {
		b.WriteString("\n\n")
		for _, r := range e.Signal.Reasons {
			b.WriteString("• " + html.EscapeString(r) + "\n")
		}
	}
	return b.String()
}

// FormatSignalList formats ranked signals for a command reply.
func FormatSignalList(title string, signals []model.ScoredSignal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>%s</b> (%d)\n\n", html.EscapeString(title), len(signals)))
	if len(signals) == 0 {
		b.WriteString("No signals.")
		return b.String()
	}
	for _, s := range signals {
		b.WriteString(fmt.Sprintf("<b>%s</b> %d/100 %s\n", s.Symbol, s.Score, s.Status))
		b.WriteString(fmt.Sprintf("   Entry: %s | TP1: %.4f | TP2: %.4f | R:R %s\n",
			s.TradeSetup.EntryZone, s.TradeSetup.Target1, s.TradeSetup.Target2, s.TradeSetup.RiskRewardRatio))
	}
	return b.String()
}

// FormatActiveList formats tracked signals for a command reply.
func FormatActiveList(active []model.ActiveSignal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎯 <b>Active Signals</b> (%d)\n\n", len(active)))
	if len(active) == 0 {
		b.WriteString("No active signals.")
		return b.String()
	}
	for _, a := range active {
		flags := ""
		if a.TP1Hit {
			flags += " ✅TP1"
		}
		if a.TP2Hit {
			flags += " ✅TP2"
		}
		b.WriteString(fmt.Sprintf("<b>%s</b> entry %.4f | SL %.4f | max %+.2f%%%s\n",
			a.Symbol, a.EntryPrice, a.StopLoss, a.MaxGainPct, flags))
	}
	return b.String()
}
