package repository

// Repository 全リポジトリのインターフェイス
type Repository interface {
	UserRepository
	ChannelRepository
	MessageRepository
	ConnectionRepository
}
