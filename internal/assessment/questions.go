package assessment

// OpeningMessage seeds every transcript. It is not counted as a turn.
const OpeningMessage = "Hi! I'm your AI career guide. Let's discover the perfect career path for you. " +
	"To start, could you tell me about your current situation? Are you a student, " +
	"looking to switch careers, or exploring new opportunities?"

// ClosingMessage is the guide's final line once every question is answered.
const ClosingMessage = "Thank you for sharing! I have enough information to generate your personalized " +
	"career recommendations. Let's see what careers match your profile!"

// CompletionNotice is sent to the notification surface before the redirect.
const CompletionNotice = "Assessment complete! Generating your results..."

// ResultsPath is where a completed assessment navigates.
const ResultsPath = "/results"

var questionBank = [...]string{
	"What subjects or activities do you enjoy most?",
	"What are your strongest skills?",
	"In your ideal work environment, would you prefer working alone, in small teams, or with large groups?",
	"What kind of impact do you want to make through your career?",
	"Are there any specific industries or fields that interest you?",
}

// QuestionBank returns a copy of the scripted questions in order.
func QuestionBank() []string {
	return append([]string(nil), questionBank[:]...)
}
