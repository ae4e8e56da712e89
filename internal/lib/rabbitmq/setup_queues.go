package rabbitmq

// Exchange обменник для событий листа ожидания.
const Exchange = "waitlist"

// RoutingKeySignupCreated ключ маршрутизации события о новой заявке.
const RoutingKeySignupCreated = "signup.created"

// QueueWelcome очередь, из которой читает рассыльщик приветственных писем.
const QueueWelcome = "waitlist.welcome"

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetWaitlistQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueWelcome, RoutingKey: RoutingKeySignupCreated},
	}
}
