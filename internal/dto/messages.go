package dto

// Topic names for the in-process task queue.
const (
	TopicConversationLogged = "CONVERSATION_LOGGED"
	TopicDocumentPublished  = "DOCUMENT_PUBLISHED"
)

// ConversationLoggedMessage is emitted after an answer is returned to
// the user. Persisting it is best-effort and must never block or fail
// the answer itself.
type ConversationLoggedMessage struct {
	Query       string `json:"query"`
	Response    string `json:"response"`
	ContextUsed string `json:"context_used"`
	ModelName   string `json:"model_name"`
	IpAddress   string `json:"ip_address"`
}

// DocumentPublishedMessage is emitted once an approved document has
// been moved into the live directory. The consumer runs the slow
// embed+index phase off the request path and then signals peers.
type DocumentPublishedMessage struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Username string `json:"username"`
}
