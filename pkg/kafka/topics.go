package kafka

import "fmt"

// TopicPrefix is the standard prefix for all storefront Kafka topics.
const TopicPrefix = "antiquepox"

// Topic builds a topic name from a domain and action, e.g. Topic("order", "paid") = "antiquepox.order.paid".
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
