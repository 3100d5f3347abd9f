package nlp

var (
	questionWords = []string{
		"что", "как", "где", "когда", "почему", "зачем", "кто", "куда", "откуда", "сколько",
		"какой", "какая", "какое", "какие", "чей", "чья", "чьё", "чьи",
	}

	greetingWords = []string{
		"привет", "здравствуй", "здравствуйте", "добро пожаловать", "салют",
		"доброе утро", "добрый день", "добрый вечер", "хай", "йо",
	}

	farewellWords = []string{
		"пока", "до свидания", "прощай", "до встречи", "увидимся",
		"пока-пока", "чао", "бай", "до скорого",
	}

	positiveWords = []string{
		"хорошо", "отлично", "супер", "круто", "классно", "замечательно",
		"прекрасно", "великолепно", "шикарно", "потрясающе", "нравится",
		"люблю", "обожаю", "восторге", "радует", "приятно",
	}

	negativeWords = []string{
		"плохо", "ужасно", "отвратительно", "кошмар", "страшно",
		"не нравится", "ненавижу", "бесит", "раздражает", "грустно",
		"печально", "расстроен", "злой", "недоволен",
	}

	stopWords = map[string]struct{}{
		"это": {}, "что": {}, "как": {}, "где": {}, "когда": {}, "почему": {}, "зачем": {}, "кто": {}, "куда": {},
		"для": {}, "при": {}, "над": {}, "под": {}, "про": {}, "без": {}, "через": {}, "после": {}, "перед": {},
		"или": {}, "если": {}, "чтобы": {}, "потому": {}, "поэтому": {}, "также": {}, "тоже": {},
		"можно": {}, "нужно": {}, "должен": {}, "будет": {}, "была": {}, "были": {}, "есть": {}, "имеет": {},
	}
)

// topicKeywords is checked in order; the first topic with a hit wins.
var topicKeywords = []struct {
	topic    Topic
	keywords []string
}{
	{TopicScience, []string{"наука", "физика", "химия", "биология", "математика", "астрономия", "исследование"}},
	{TopicTechnology, []string{"технологии", "компьютер", "программирование", "интернет", "ии", "нейросеть", "робот"}},
	{TopicLife, []string{"жизнь", "семья", "друзья", "работа", "учеба", "дом", "здоровье", "счастье"}},
	{TopicNature, []string{"природа", "животные", "растения", "погода", "море", "лес", "горы", "река"}},
	{TopicCulture, []string{"культура", "искусство", "музыка", "кино", "книги", "театр", "живопись", "литература"}},
	{TopicFood, []string{"еда", "готовка", "рецепт", "ресторан", "кухня", "вкусно", "блюдо", "продукты"}},
	{TopicSport, []string{"спорт", "футбол", "баскетбол", "тренировка", "фитнес", "здоровье", "игра", "команда"}},
	{TopicPhilosophy, []string{"философия", "смысл", "жизнь", "мысли", "размышления", "вопросы", "истина", "бытие"}},
}

var responseTemplates = map[MessageType][]string{
	MessageGreeting: {
		"Привет! Как дела?",
		"Здравствуйте! Рад вас видеть!",
		"Добро пожаловать! Как настроение?",
		"Салют! Что нового?",
		"Привет! Готов к интересному общению!",
	},
	MessageFarewell: {
		"До свидания! Было приятно пообщаться!",
		"Пока! Увидимся позже!",
		"До встречи! Жду новых вопросов!",
		"Прощайте! Хорошего дня!",
		"Пока-пока! Заходите ещё!",
	},
	MessagePositive: {
		"Рад, что вам понравилось!",
		"Отлично! Продолжаем в том же духе!",
		"Спасибо за позитивную оценку!",
		"Замечательно! Это меня мотивирует!",
		"Круто! Стараюсь для вас!",
	},
	MessageNegative: {
		"Понимаю, постараюсь лучше.",
		"Извините, буду улучшаться.",
		"Принимаю критику, спасибо за честность.",
		"Учту ваши замечания для развития.",
		"Жаль, что не понравилось. Работаю над собой!",
	},
	MessageQuestion: {
		"Интересный вопрос! Размышляю...",
		"Хороший вопрос! Позвольте подумать...",
		"Любопытно! Анализирую информацию...",
		"Отличный вопрос! Формулирую ответ...",
		"Интригующий вопрос! Обрабатываю данные...",
	},
	MessageDefault: {
		"Понимаю вас. Интересная тема!",
		"Да, это важная мысль.",
		"Согласен, стоит об этом подумать.",
		"Вы правы, это действительно так.",
		"Интересная точка зрения!",
	},
}

var topicSentences = map[Topic][]string{
	TopicScience: {
		"Наука - это увлекательная область знаний!",
		"Научные исследования помогают понять мир.",
		"Я люблю изучать научные факты и теории.",
		"Наука постоянно развивается и удивляет.",
	},
	TopicTechnology: {
		"Технологии меняют нашу жизнь каждый день.",
		"Программирование - это современное искусство.",
		"ИИ и нейросети - будущее человечества.",
		"Компьютеры становятся всё умнее.",
	},
	TopicLife: {
		"Жизнь полна интересных моментов.",
		"Семья и друзья - главные ценности.",
		"Каждый день приносит новые возможности.",
		"Важно находить баланс между работой и отдыхом.",
	},
	TopicNature: {
		"Природа удивительна и прекрасна.",
		"Животные и растения - наши соседи по планете.",
		"Важно беречь окружающую среду.",
		"Природа даёт нам энергию и вдохновение.",
	},
	TopicCulture: {
		"Культура обогащает нашу жизнь.",
		"Искусство выражает человеческие чувства.",
		"Музыка и кино создают особую атмосферу.",
		"Книги открывают новые миры.",
	},
	TopicFood: {
		"Еда - это не только питание, но и удовольствие.",
		"Готовка может быть творческим процессом.",
		"Разные кухни мира имеют свои особенности.",
		"Вкусная еда объединяет людей.",
	},
	TopicSport: {
		"Спорт развивает тело и характер.",
		"Командные игры учат работать вместе.",
		"Физические упражнения полезны для здоровья.",
		"Спорт может быть очень зрелищным.",
	},
	TopicPhilosophy: {
		"Философские вопросы заставляют задуматься.",
		"Смысл жизни - вечная тема для размышлений.",
		"Каждый человек ищет свою истину.",
		"Мысли и идеи формируют наш мир.",
	},
}

var followUpQuestions = map[Topic][]string{
	TopicScience: {
		"Какая область науки вам наиболее интересна?",
		"Слышали ли вы о последних научных открытиях?",
		"Что думаете о будущем науки?",
	},
	TopicTechnology: {
		"Какие технологии изменили вашу жизнь?",
		"Как вы относитесь к развитию ИИ?",
		"Какую роль играют гаджеты в вашей жизни?",
	},
	TopicLife: {
		"Что для вас самое важное в жизни?",
		"Какие у вас планы на будущее?",
		"Что делает вас счастливым?",
	},
	TopicGeneral: {
		"Расскажите больше об этом.",
		"Что вас в этом интересует?",
		"Хотели бы обсудить что-то ещё?",
	},
}

// keywordPhrasePrefix introduces the keyword clause appended to a template.
const keywordPhrasePrefix = "Интересно говорить о: "
