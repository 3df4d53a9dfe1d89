package domain

// SubscriberID identifies a notification recipient (chat, session, ...).
type SubscriberID string
