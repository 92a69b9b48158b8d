package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
	"github.com/aliskhannn/english-level-bot/internal/service"
)

// Presenter renders the quiz core's effects as Telegram messages. It is the
// bot-side implementation of the core's messaging port; the quiz service
// never sees tgbotapi types.
type Presenter struct {
	bot *tgbotapi.BotAPI
}

func NewPresenter(bot *tgbotapi.BotAPI) *Presenter {
	return &Presenter{bot: bot}
}

// ShowQuestion sends the question with its answer keyboard and returns the
// message id for later cleanup.
func (p *Presenter) ShowQuestion(chatID int64, view service.QuestionView) (int, error) {
	msg := newHTMLMessage(chatID, formatQuestion(view))
	msg.ReplyMarkup = buildAnswerKeyboard(len(view.Options))

	sent, err := p.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// ShowTimer sends the countdown message below the question.
func (p *Presenter) ShowTimer(chatID int64, remaining, total int) (int, error) {
	msg := newHTMLMessage(chatID, formatTimer(remaining, total))

	sent, err := p.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// UpdateTimer edits the countdown message in place.
func (p *Presenter) UpdateTimer(chatID int64, messageID, remaining, total int) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, formatTimer(remaining, total))
	edit.ParseMode = tgbotapi.ModeHTML

	_, err := p.bot.Send(edit)
	return err
}

// ShowFeedback sends the answer feedback. After a timeout the run advances by
// itself, so no "next" button is offered.
func (p *Presenter) ShowFeedback(chatID int64, view service.FeedbackView) (int, error) {
	msg := newHTMLMessage(chatID, formatFeedback(view))
	if !view.TimedOut {
		msg.ReplyMarkup = buildNextKeyboard()
	}

	sent, err := p.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// ShowResults sends the final score summary.
func (p *Presenter) ShowResults(chatID int64, result entities.QuizResult) error {
	_, err := p.bot.Send(newHTMLMessage(chatID, formatResults(result)))
	return err
}

// ShowPausedControls replaces the question message with the paused notice and
// a restart-only keyboard.
func (p *Presenter) ShowPausedControls(chatID int64, messageID int) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, msgPaused, buildRestartKeyboard())
	edit.ParseMode = tgbotapi.ModeHTML

	_, err := p.bot.Send(edit)
	return err
}

// DeleteMessage removes a previously sent message.
func (p *Presenter) DeleteMessage(chatID int64, messageID int) error {
	_, err := p.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// SendText sends a plain broadcast message.
func (p *Presenter) SendText(chatID int64, text string) error {
	_, err := p.bot.Send(newHTMLMessage(chatID, text))
	return err
}

// SendLeaderboard sends the leaderboard digest.
func (p *Presenter) SendLeaderboard(chatID int64, entries []entities.LeaderboardEntry) error {
	_, err := p.bot.Send(newHTMLMessage(chatID, formatLeaderboard(entries)))
	return err
}
