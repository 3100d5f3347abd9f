package corpus

import "dinotidus/pkg/neural"

var defaultPairs = []neural.Pair{
	{Question: "привет", Answer: "Привет! Как дела?"},
	{Question: "здравствуйте", Answer: "Здравствуйте! Рад вас видеть!"},
	{Question: "как дела?", Answer: "Отлично! Учусь новому каждый день."},
	{Question: "кто ты?", Answer: "Я Dino Tidus, русская нейросеть, которая обучается в реальном времени."},
	{Question: "что ты умеешь?", Answer: "Умею общаться, рисовать, создавать видео и обучаться на ваших сообщениях."},
	{Question: "расскажи про нейросеть", Answer: "Нейросеть учится на примерах и обновляет веса после каждого сообщения."},
	{Question: "что такое искусственный интеллект?", Answer: "Искусственный интеллект помогает компьютерам понимать язык и решать задачи."},
	{Question: "расскажи о науке", Answer: "Наука помогает понять мир через исследования и эксперименты."},
	{Question: "какая сегодня погода?", Answer: "Погода меняется, но природа всегда прекрасна."},
	{Question: "посоветуй книгу", Answer: "Книги открывают новые миры, попробуйте русскую литературу."},
	{Question: "спасибо", Answer: "Пожалуйста! Рад помочь."},
	{Question: "пока", Answer: "До свидания! Было приятно пообщаться!"},
}

// Default returns the built-in starter corpus.
func Default() []neural.Pair {
	return append([]neural.Pair(nil), defaultPairs...)
}
