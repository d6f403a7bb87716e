package streamers

// ChatHandler defines the interface for handling chat I/O
// Different implementations can handle stdout/stdin, websocket, etc.
type ChatHandler interface {
	// Welcome displays the initial welcome message when chat starts
	Welcome(userName string, modelName string)

	// AwaitClientAnswer prompts for and reads user input, returns the input and any error
	AwaitClientAnswer() (string, error)

	// AwaitCode reads a multi-line code submission, terminated by a line
	// containing only "EOF" or by end of input
	AwaitCode() (string, error)

	// Goodbye displays the farewell message when chat ends
	Goodbye()

	// Error displays an error message
	Error(err error)

	// Notice displays an informational status line
	Notice(message string)

	// Thinking is called when the model starts processing
	Thinking()

	// PublishAnswerChunk is called for each chunk of the answer as it streams
	PublishAnswerChunk(chunk string)

	// FinishAnswer is called when the answer is complete (to print newlines, stop spinner, etc)
	FinishAnswer()
}
