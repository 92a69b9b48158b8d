package telegram

import "strings"

// Callback action constants.
const (
	actionLevel   = "level"
	actionReading = "reading"
	actionTopic   = "topic"
	actionAnswer  = "ans"
	actionNext    = "next"
	actionPause   = "pause"
	actionRestart = "restart"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildLevelCallback builds callback data for starting a level quiz.
func buildLevelCallback(level string) string {
	return callbackData{
		Action: actionLevel,
		Params: []string{level},
	}.encode()
}

// buildReadingCallback builds callback data for starting a reading test.
func buildReadingCallback(level string) string {
	return callbackData{
		Action: actionReading,
		Params: []string{level},
	}.encode()
}

// buildTopicCallback builds callback data for starting a topic quiz.
func buildTopicCallback(topicID string) string {
	return callbackData{
		Action: actionTopic,
		Params: []string{topicID},
	}.encode()
}

// buildAnswerCallback builds callback data for an answer button.
func buildAnswerCallback(letter string) string {
	return callbackData{
		Action: actionAnswer,
		Params: []string{letter},
	}.encode()
}

func buildNextCallback() string {
	return actionNext
}

func buildPauseCallback() string {
	return actionPause
}

func buildRestartCallback() string {
	return actionRestart
}
