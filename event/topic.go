package event

const (
	// NewMessage チャンネルにメッセージが投稿された
	// 	Body: MessageBody
	NewMessage = "new_message"
	// NewDirectMessage DMチャンネルにメッセージが投稿された
	// 	Body: MessageBody
	NewDirectMessage = "new_direct_message"
	// Reaction メッセージにリアクションが付けられた
	// 	Body: ReactionBody
	Reaction = "reaction"
	// DeleteReaction メッセージからリアクションが外された
	// 	Body: ReactionBody
	DeleteReaction = "delete_reaction"
	// Typing ユーザーがチャンネルで入力中になった
	// 	Body: TypingBody
	Typing = "typing"
	// Presence ユーザーのプレゼンスが変化した
	// 	Body: PresenceBody
	Presence = "presence"
)

// Topics バスが購読する全イベント
func Topics() []string {
	return []string{
		NewMessage,
		NewDirectMessage,
		Reaction,
		DeleteReaction,
		Typing,
		Presence,
	}
}
