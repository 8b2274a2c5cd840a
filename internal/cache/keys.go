package cache

// Key formats shared with existing deployments. They must stay bit-exact:
// other nodes derive the same keys against the same cache.

// UserKey caches the user snapshot.
func UserKey(userID string) string { return "user:" + userID }

// ShortKey caches the short-with-like-count view.
func ShortKey(shortID string) string { return "short:" + shortID }

// UserShortsKey caches the list of short ids owned by a user.
func UserShortsKey(userID string) string { return "userShorts:" + userID }

// FollowersKey caches the follower list of a user.
func FollowersKey(userID string) string { return "followers:" + userID }

// LikesKey caches the list of users that liked a short.
func LikesKey(shortID string) string { return "likes:" + shortID }
