package market

const TopicNotifyRequested = "notify.requested"

// Partition key = user_id so one user's notifications keep their order.
func PartitionKey(id string) []byte { return []byte(id) }
