package telegram

// Client defines an interface for delivering reminder texts to an
// owner's chat. This decouples the scheduler and services from the
// specific bot library.
type Client interface {
	Deliver(ownerChatID int64, text string) error
}
