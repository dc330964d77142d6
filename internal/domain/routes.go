package domain

// Route keys group calls sharing one upstream quota. Reaction reads are
// limited per channel.

func ReactionRouteKey(channel ChannelID) string {
	return "reactions:" + string(channel)
}

func MessagesRouteKey(channel ChannelID) string {
	return "messages:" + string(channel)
}

func PublishRouteKey(channel ChannelID) string {
	return "publish:" + string(channel)
}
