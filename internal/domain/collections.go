package domain

// Имена коллекций (таблиц) хранилища сущностей.
const (
	CollectionUsers         = "users"
	CollectionVideos        = "videos"
	CollectionComments      = "comments"
	CollectionPosts         = "posts"
	CollectionLikes         = "likes"
	CollectionSubscriptions = "subscriptions"
	CollectionPlaylists     = "playlists"
)
