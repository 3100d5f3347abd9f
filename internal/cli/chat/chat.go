package chat

import (
	"os"
	"strings"
)

const (
	CmdReset    = "/reset"
	CmdHelp     = "/help"
	CmdStats    = "/stats"
	CmdSave     = "/save"
	CmdLoad     = "/load"
	CmdTrain    = "/train"
	CmdExamples = "/examples"
	CmdCopy     = "/copy"
	CmdUnknown  = "/unknown"
)

// HelpText lists the slash commands understood by ParseInput.
const HelpText = `Команды:
  /help             эта подсказка
  /stats            размер и качество нейросети
  /examples         последние обучающие пары
  /train [файл]     обучить на корпусе (json, jsonl, csv, yaml, parquet)
                    без файла - встроенный корпус
  /save <файл>      сохранить модель
  /load <файл>      загрузить модель
  /copy             скопировать диалог в буфер обмена
  /reset            начать с чистой нейросети
  /quit             выход`

var argCommands = map[string]bool{CmdSave: true, CmdLoad: true, CmdTrain: true}

var bareCommands = map[string]bool{
	CmdReset: true, CmdHelp: true, CmdStats: true, CmdExamples: true, CmdCopy: true,
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func WriteFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// ParseInput splits a line into a slash command and its argument. Plain text
// comes back with an empty command. quit is set for /quit and /exit.
func ParseInput(input string) (string, string, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return "", input, false
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch {
	case name == "/quit" || name == "/exit":
		return "", "", true
	case bareCommands[name]:
		return name, "", false
	case argCommands[name]:
		return name, arg, false
	}
	return CmdUnknown, name, false
}
