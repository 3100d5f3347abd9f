package nlp

// MessageType describes the conversational intent of a message.
type MessageType string

const (
	MessageGreeting MessageType = "greeting"
	MessageFarewell MessageType = "farewell"
	MessagePositive MessageType = "positive"
	MessageNegative MessageType = "negative"
	MessageQuestion MessageType = "question"
	MessageDefault  MessageType = "default"
)

// Topic describes the subject matter of a message.
type Topic string

const (
	TopicScience    Topic = "science"
	TopicTechnology Topic = "technology"
	TopicLife       Topic = "life"
	TopicNature     Topic = "nature"
	TopicCulture    Topic = "culture"
	TopicFood       Topic = "food"
	TopicSport      Topic = "sport"
	TopicPhilosophy Topic = "philosophy"
	TopicGeneral    Topic = "general"
)

// Tone is the emotional colouring of a message.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)
