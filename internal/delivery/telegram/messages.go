// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
	"github.com/aliskhannn/english-level-bot/internal/service"
)

const (
	msgWelcome = "🇺🇿 Assalomu alaykum! Ingliz tili darajangizni aniqlaymiz\n\n" +
		"📊 Darajani tanlang:"
	msgReadingIntro = "📖 Reading test boshlanmoqda!\n\nOʻzingizga mos darajani tanlang:"
	msgTopicsIntro  = "📚 Mavzuni tanlang:"
	msgLevelChosen  = "🎯 Siz <b>%s</b> darajasini tanladingiz!\n\n🚀 Boshladik!"
	msgPaused       = "⏸️ Test toʻxtatildi"
	msgRestart      = "❌ Faol test topilmadi. /start buyrugʻini bosing."
	msgInternalErr  = "❌ Xatolik yuz berdi. Iltimos, /start bilan qaytadan urining."
	msgNoScores     = "Hozircha natijalar yoʻq. Birinchi boʻling!"
	msgNotAdmin     = "Bu buyruq faqat admin uchun."
	msgBroadcastUse = "Foydalanish: /broadcast <matn>"
	msgUnknownCmd   = "Nomaʼlum buyruq. Mavjud buyruqlar:\n\n" +
		"/start — darajani tanlab testni boshlash\n" +
		"/reading — reading testlari\n" +
		"/topics — mavzu boʻyicha testlar\n" +
		"/top — eng yaxshi natijalar"
)

const timerBarCells = 10

// newHTMLMessage creates a message with HTML parse mode.
func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

// formatQuestion renders a question with lettered options, prefixed by the
// reading passage when there is one.
func formatQuestion(v service.QuestionView) string {
	var sb strings.Builder

	if v.Passage != "" {
		sb.WriteString(fmt.Sprintf("📖 <b>Matn (%d/%d)</b>\n\n", v.Index+1, v.Total))
		sb.WriteString(v.Passage)
		sb.WriteString("\n\n")
		sb.WriteString("<b>Savol:</b> ")
	} else {
		sb.WriteString(fmt.Sprintf("📝 <b>Savol %d/%d</b>\n\n", v.Index+1, v.Total))
	}

	sb.WriteString(v.Prompt)
	sb.WriteString("\n\n")

	for i, opt := range v.Options {
		if i >= len(entities.OptionLetters) {
			break
		}
		sb.WriteString(fmt.Sprintf("%s) %s\n", entities.OptionLetters[i], opt))
	}

	return sb.String()
}

// formatTimer renders the countdown with a fixed-width progress bar.
func formatTimer(remaining, total int) string {
	if remaining <= 0 {
		return "⏰ Vaqt tugadi!"
	}

	filledCount := timerBarCells
	if total > 0 {
		filledCount = (remaining*timerBarCells + total/2) / total
		if filledCount > timerBarCells {
			filledCount = timerBarCells
		}
		if filledCount < 1 {
			filledCount = 1
		}
	}

	bar := strings.Repeat("🟩", filledCount) + strings.Repeat("⬜", timerBarCells-filledCount)
	return fmt.Sprintf("<b>⏰ Vaqt: %d sekund qoldi</b>\n%s", remaining, bar)
}

func formatFeedback(v service.FeedbackView) string {
	var sb strings.Builder

	switch {
	case v.TimedOut:
		sb.WriteString("⏰ <b>VAQT TUGADI!</b>\n\n")
		sb.WriteString(fmt.Sprintf("✅ Toʻgʻri javob: <b>%s. %s</b>\n", v.CorrectLetter, v.CorrectOption))
	case v.WasCorrect:
		sb.WriteString("✅ <b>TOʻGʻRI JAVOB!</b>\n\n")
		sb.WriteString(fmt.Sprintf("👤 Siz tanladingiz: <b>%s. %s</b>\n", v.ChosenLetter, v.ChosenOption))
		sb.WriteString("🎉 Ajoyib! Bu toʻgʻri javob!\n")
	default:
		sb.WriteString("❌ <b>NOTOʻGʻRI JAVOB!</b>\n\n")
		sb.WriteString(fmt.Sprintf("👤 Siz tanladingiz: <b>%s. %s</b>\n", v.ChosenLetter, v.ChosenOption))
		sb.WriteString(fmt.Sprintf("✅ Toʻgʻri javob: <b>%s. %s</b>\n", v.CorrectLetter, v.CorrectOption))
	}

	if v.Explanation != "" {
		sb.WriteString(fmt.Sprintf("\n💡 Tushuntirish: <i>%s</i>", v.Explanation))
	}

	return sb.String()
}

func formatResults(r entities.QuizResult) string {
	return fmt.Sprintf(
		"🎊 <b>TEST YAKUNLANDI!</b>\n\n"+
			"📊 Daraja: <b>%s</b>\n"+
			"✅ Toʻgʻri javoblar: <b>%d/%d</b>\n"+
			"📈 Foiz: <b>%d%%</b>\n\n"+
			"%s %s\n\n"+
			"🔄 Yana sinab koʻrish uchun /start bosing!",
		r.LevelKey, r.Score, r.Total, r.Percent, r.Tier.Emoji, r.Tier.Comment,
	)
}

func formatLeaderboard(entries []entities.LeaderboardEntry) string {
	var sb strings.Builder
	sb.WriteString("🏆 <b>Eng yaxshi natijalar</b>\n\n")

	medals := []string{"🥇", "🥈", "🥉"}
	for i, e := range entries {
		prefix := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		sb.WriteString(fmt.Sprintf("%s %s — <b>%d</b>\n", prefix, e.FirstName, e.BestScore))
	}

	return sb.String()
}
