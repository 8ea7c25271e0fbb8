package prompt

const (
	// ContextTemplate opens every reply prompt: purpose, then project overview.
	ContextTemplate = "Conversation Purpose: %s\nProject Overview: %s"

	ResponderTemplate = "\n\nYou are %s. %s"
	ToneTemplate      = "\n\nTone: %s"

	// HistoryLineTemplate renders one message for the summary prompts.
	HistoryLineTemplate = "%s: %s"

	TopicsSystemPrompt = "You are an expert at analyzing conversations and identifying the main topics and key points discussed. " +
		"Extract a list of topics and key points from the conversation. " +
		"Format your response as a bulleted list with main topics as headers and key points as sub-bullets. " +
		"Be comprehensive but concise."

	TopicsUserTemplate = ContextTemplate +
		"\n\nPlease analyze the following conversation and extract the main topics and key points:"

	TopicSummariesSystemPrompt = "You are an expert at summarizing complex discussions. " +
		"For each topic and key point in the conversation, provide a concise summary that captures the critical information. " +
		"Focus on information that would be important for continuing the conversation. " +
		"Format your response with topic headers and summaries as paragraphs."

	TopicSummariesUserTemplate = ContextTemplate +
		"\n\nPlease summarize the following conversation by topic:"

	AssistantSummariesSystemPrompt = "You are an expert at analyzing conversations and understanding the role of different participants. " +
		"For each assistant in the conversation, provide a summary of their contributions and the critical points related to their expertise. " +
		"Format your response with assistant names as headers and summaries as paragraphs."

	AssistantsHeader               = "Assistants in this conversation:\n"
	AssistantLineTemplate          = "- %s: %s\n"
	AssistantSummariesUserTemplate = ContextTemplate +
		"\n\n%s\n\nPlease summarize the contributions of each assistant:"

	DefaultAssistantName = "Assistant"
	DefaultUserName      = "User"
)
