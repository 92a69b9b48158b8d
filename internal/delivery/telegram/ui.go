package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
	"github.com/aliskhannn/english-level-bot/internal/repository"
)

var levelEmojis = map[string]string{
	"A1": "🟢",
	"A2": "🔵",
	"B1": "🟡",
	"B2": "🟠",
	"C1": "🔴",
	"C2": "🟣",
}

// buildLevelKeyboard builds the level selection keyboard, one level per row.
func buildLevelKeyboard(levels []string, reading bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, level := range levels {
		label := levelEmojis[level] + " " + level
		data := buildLevelCallback(level)
		if reading {
			data = buildReadingCallback(level)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildTopicsKeyboard builds the topic selection keyboard.
func buildTopicsKeyboard(topics []repository.Topic) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range topics {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 "+t.Title, buildTopicCallback(t.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildAnswerKeyboard builds the A/B/C/D answer keyboard with a pause row.
func buildAnswerKeyboard(optionCount int) tgbotapi.InlineKeyboardMarkup {
	letters := entities.OptionLetters
	if optionCount < len(letters) {
		letters = letters[:optionCount]
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(letters); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(letters[i], buildAnswerCallback(letters[i])),
		}
		if i+1 < len(letters) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(letters[i+1], buildAnswerCallback(letters[i+1])))
		}
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏸️ Pauza", buildPauseCallback()),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildNextKeyboard builds the keyboard shown with answer feedback.
func buildNextKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭️ Keyingi savol", buildNextCallback()),
		),
	)
}

// buildRestartKeyboard is the only control offered while a quiz is paused.
func buildRestartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Qayta boshlash", buildRestartCallback()),
		),
	)
}
