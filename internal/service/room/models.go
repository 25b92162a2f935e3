package room

type Track struct {
	Id             string `json:"id"`
	Title          string `json:"title"`
	SmallThumbnail string `json:"small_thumbnail"`
	BigThumbnail   string `json:"big_thumbnail"`
	Votes          int    `json:"votes"`
}
