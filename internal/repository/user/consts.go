package user

const (
	// collection name
	userNode string = "users"

	// Fields' name and path
	NameFieldPath        string = "name"
	EmailFieldPath       string = "email"
	FavoritesFieldPath   string = "favorites"
	ReviewCountFieldPath string = "reviewCount"
)
